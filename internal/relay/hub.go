package relay

import (
	"log/slog"
	"sync"

	"ytrelay/internal/job"
	"ytrelay/internal/metrics"
)

// Hub routes progress payloads to the sessions joined to each job's room.
// All membership state is owned by the run loop goroutine and mutated only
// through its command channels, so joins, leaves, and broadcasts interleave
// atomically without locks: a join either fully precedes a broadcast or fully
// follows it.
type Hub struct {
	clients map[*Client]bool

	// rooms maps a job identifier to the sessions currently joined to it.
	// Rooms exist only while they have members.
	rooms map[job.ID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	broadcast  chan broadcastRequest
	stop       chan struct{}
	stopOnce   sync.Once
	stopped    chan struct{}

	logger *slog.Logger
}

type joinRequest struct {
	client *Client
	id     job.ID
}

type broadcastRequest struct {
	id      job.ID
	payload []byte
}

// NewHub constructs a hub; call Run before wiring clients or the subscriber.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[job.ID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		broadcast:  make(chan broadcastRequest, 256),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run processes hub commands until Stop is called. It owns every mutation of
// the membership maps.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.OpenConnections.Inc()
			h.logger.Debug("session registered",
				slog.String("session_id", client.id),
				slog.Int("total", len(h.clients)),
			)

		case client := <-h.unregister:
			h.removeClient(client)

		case req := <-h.join:
			h.addToRoom(req.client, req.id)

		case req := <-h.broadcast:
			h.deliver(req.id, req.payload)

		case <-h.stop:
			for client := range h.clients {
				h.removeClient(client)
			}
			return
		}
	}
}

// Stop terminates the run loop and closes every remaining session's outbox.
// Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.stopped
}

// Register adds a freshly upgraded session to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
	}
}

// Unregister removes a session and its room memberships. Safe to call more
// than once for the same session.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Join adds a session to the room named by id. The joined acknowledgment is
// enqueued by the run loop after membership is applied, so any broadcast
// processed after the ack is guaranteed to reach the joiner.
func (h *Hub) Join(client *Client, id job.ID) {
	select {
	case h.join <- joinRequest{client: client, id: id}:
	case <-h.stopped:
	}
}

// Broadcast delivers payload to every session currently in room id, in the
// order Broadcast calls are made. A room with no members is a silent no-op.
func (h *Hub) Broadcast(id job.ID, payload []byte) {
	select {
	case h.broadcast <- broadcastRequest{id: id, payload: payload}:
	case <-h.stopped:
	}
}

func (h *Hub) addToRoom(client *Client, id job.ID) {
	if !h.clients[client] {
		// Session already gone; nothing to join.
		return
	}
	members, ok := h.rooms[id]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[id] = members
		metrics.ActiveRooms.Inc()
	}
	members[client] = true
	client.joined[id] = true
	metrics.JoinsTotal.Inc()
	h.logger.Info("session joined room",
		slog.String("session_id", client.id),
		slog.String("job_id", id.String()),
		slog.Int("members", len(members)),
	)
	client.enqueue(joinedFrame)
}

func (h *Hub) deliver(id job.ID, payload []byte) {
	members, ok := h.rooms[id]
	if !ok {
		return
	}
	frame, err := progressFrame(payload)
	if err != nil {
		// Payload already passed DecodeProgress, so this should not happen.
		h.logger.Error("encode progress frame failed", slog.Any("error", err))
		return
	}
	for client := range members {
		if !client.enqueue(frame) {
			// Outbox full: the client is too slow to keep up. Delivery is
			// at-most-once, so drop the session rather than block the loop.
			h.logger.Warn("session outbox full, dropping session",
				slog.String("session_id", client.id),
			)
			h.removeClient(client)
		}
	}
	metrics.MessagesRelayed.Inc()
}

func (h *Hub) removeClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	for id := range client.joined {
		if members, ok := h.rooms[id]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, id)
				metrics.ActiveRooms.Dec()
			}
		}
	}
	close(client.send)
	metrics.OpenConnections.Dec()
	h.logger.Debug("session unregistered",
		slog.String("session_id", client.id),
		slog.Int("total", len(h.clients)),
	)
}
