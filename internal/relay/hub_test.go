package relay

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"ytrelay/internal/job"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(testLogger())
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func newTestClient(h *Hub, id string) *Client {
	return &Client{
		id:     id,
		hub:    h,
		send:   make(chan []byte, sendBufferSize),
		joined: make(map[job.ID]bool),
		logger: testLogger(),
	}
}

func recvFrame(t *testing.T, c *Client, wantEvent string) frame {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		if !ok {
			t.Fatalf("outbox closed while waiting for %q frame", wantEvent)
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("decode frame %s: %v", raw, err)
		}
		if f.Event != wantEvent {
			t.Fatalf("event = %q, want %q", f.Event, wantEvent)
		}
		return f
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %q frame", wantEvent)
	}
	return frame{}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		if !ok {
			t.Fatalf("outbox unexpectedly closed")
		}
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func joinRoom(t *testing.T, h *Hub, c *Client, id job.ID) {
	t.Helper()
	h.Join(c, id)
	recvFrame(t, c, eventJoined)
}

func TestJoinThenBroadcastDelivery(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, "c1")
	h.Register(c)

	joinRoom(t, h, c, "abc123")

	payload := []byte(`{"jobId":"abc123","status":"started"}`)
	h.Broadcast("abc123", payload)

	f := recvFrame(t, c, eventProgress)
	if !bytes.Equal(f.Data, payload) {
		t.Fatalf("progress data = %s, want %s", f.Data, payload)
	}
}

func TestNoCrossRoomLeakage(t *testing.T) {
	h := newTestHub(t)
	c1 := newTestClient(h, "c1")
	c2 := newTestClient(h, "c2")
	h.Register(c1)
	h.Register(c2)

	joinRoom(t, h, c1, "job-a")
	joinRoom(t, h, c2, "job-b")

	h.Broadcast("job-a", []byte(`{"jobId":"job-a","status":"queue"}`))

	recvFrame(t, c1, eventProgress)
	expectSilence(t, c2)
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, "c1")
	h.Register(c)

	h.Broadcast("nobody-home", []byte(`{"jobId":"nobody-home","status":"started"}`))

	// The loop must keep serving after the no-op.
	joinRoom(t, h, c, "abc123")
	h.Broadcast("abc123", []byte(`{"jobId":"abc123","status":"started"}`))
	recvFrame(t, c, eventProgress)
}

func TestDisconnectCleanup(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, "c1")
	h.Register(c)
	joinRoom(t, h, c, "abc123")

	h.Unregister(c)
	// The hub closes the outbox once membership is gone.
	if _, ok := waitClosed(t, c.send); ok {
		t.Fatalf("outbox still open after unregister")
	}

	// Re-unregistering and broadcasting to the abandoned room must be no-ops.
	h.Unregister(c)
	h.Broadcast("abc123", []byte(`{"jobId":"abc123","status":"completed"}`))

	// A fresh session in the same room still gets deliveries.
	c2 := newTestClient(h, "c2")
	h.Register(c2)
	joinRoom(t, h, c2, "abc123")
	h.Broadcast("abc123", []byte(`{"jobId":"abc123","status":"completed"}`))
	recvFrame(t, c2, eventProgress)
}

func TestJoinMultipleRooms(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, "c1")
	h.Register(c)

	joinRoom(t, h, c, "job-a")
	joinRoom(t, h, c, "job-b")

	h.Broadcast("job-a", []byte(`{"jobId":"job-a","status":"started"}`))
	recvFrame(t, c, eventProgress)
	h.Broadcast("job-b", []byte(`{"jobId":"job-b","status":"started"}`))
	recvFrame(t, c, eventProgress)
}

func TestPerRoomOrdering(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, "c1")
	h.Register(c)
	joinRoom(t, h, c, "abc123")

	statuses := []string{"queue", "started", "completed"}
	for _, s := range statuses {
		h.Broadcast("abc123", []byte(`{"jobId":"abc123","status":"`+s+`"}`))
	}

	for _, want := range statuses {
		f := recvFrame(t, c, eventProgress)
		var event job.ProgressEvent
		if err := json.Unmarshal(f.Data, &event); err != nil {
			t.Fatalf("decode progress payload: %v", err)
		}
		if event.Status != want {
			t.Fatalf("status = %q, want %q (out of order)", event.Status, want)
		}
	}
}

func TestJoinAfterUnregisterIgnored(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, "c1")
	h.Register(c)
	h.Unregister(c)
	if _, ok := waitClosed(t, c.send); ok {
		t.Fatalf("outbox still open after unregister")
	}

	// The hub must not ack or track a join from a session it already dropped.
	h.Join(c, "abc123")
	h.Broadcast("abc123", []byte(`{"jobId":"abc123","status":"started"}`))

	c2 := newTestClient(h, "c2")
	h.Register(c2)
	joinRoom(t, h, c2, "other")
}

// waitClosed drains c until it is closed or times out, reporting the last
// received value and whether the channel is still open.
func waitClosed(t *testing.T, c chan []byte) ([]byte, bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case raw, ok := <-c:
			if !ok {
				return nil, false
			}
			_ = raw
		case <-deadline:
			return nil, true
		}
	}
}
