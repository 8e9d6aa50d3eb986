package relay

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"ytrelay/internal/job"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 70 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one live websocket session. The hub owns its room memberships;
// the session owns the connection and its two pump goroutines.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	// send is the session outbox, written by the hub loop and drained by
	// writePump. The hub closes it on unregister.
	send chan []byte

	// joined is read and written only by the hub run loop.
	joined map[job.ID]bool

	logger *slog.Logger
}

// enqueue offers a frame to the session outbox without blocking. It reports
// false when the outbox is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// readPump consumes client commands until the connection drops, then triggers
// membership cleanup. A malformed command is logged and ignored; the relay
// never closes a connection over one.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("websocket closed", slog.Any("error", err))
			}
			return
		}
		c.handleCommand(message)
	}
}

func (c *Client) handleCommand(message []byte) {
	var f frame
	if err := json.Unmarshal(message, &f); err != nil {
		c.logger.Debug("malformed command frame", slog.Any("error", err))
		return
	}

	switch f.Event {
	case eventJoin:
		var raw string
		if err := json.Unmarshal(f.Data, &raw); err != nil {
			c.logger.Debug("join payload is not a string", slog.Any("error", err))
			return
		}
		id, err := job.ParseID(raw)
		if err != nil {
			c.logger.Debug("join rejected", slog.Any("error", err))
			return
		}
		c.hub.Join(c, id)
	default:
		c.logger.Debug("unknown command event", slog.String("event", f.Event))
	}
}

// writePump drains the outbox and keeps the connection alive with pings. It
// exits when the hub closes the outbox or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				deadline := time.Now().Add(writeWait)
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Info("write message failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				c.logger.Info("write ping failed", slog.Any("error", err))
				return
			}
		}
	}
}
