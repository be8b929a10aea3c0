package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.GetConnectionCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d connections, got %d", want, h.GetConnectionCount())
}

func TestHubLocalDelivery(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Shutdown()

	userID := uuid.New()
	conn := &Connection{UserID: userID, Send: make(chan []byte, 4)}
	h.Register(conn)
	waitForCount(t, h, 1)

	if err := h.SendToUserJSON(userID, map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	select {
	case data := <-conn.Send:
		var payload map[string]string
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if payload["type"] != "ping" {
			t.Fatalf("unexpected payload %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a message on the connection")
	}
}

func TestHubFansOutToAllUserConnections(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Shutdown()

	userID := uuid.New()
	first := &Connection{UserID: userID, Send: make(chan []byte, 4)}
	second := &Connection{UserID: userID, Send: make(chan []byte, 4)}
	other := &Connection{UserID: uuid.New(), Send: make(chan []byte, 4)}
	h.Register(first)
	h.Register(second)
	h.Register(other)
	waitForCount(t, h, 3)

	if err := h.SendToUserJSON(userID, map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, conn := range []*Connection{first, second} {
		select {
		case <-conn.Send:
		case <-time.After(time.Second):
			t.Fatal("expected every connection for the user to receive the message")
		}
	}
	select {
	case <-other.Send:
		t.Fatal("expected other users to receive nothing")
	default:
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Shutdown()

	conn := &Connection{UserID: uuid.New(), Send: make(chan []byte, 4)}
	h.Register(conn)
	waitForCount(t, h, 1)

	h.Unregister(conn)
	waitForCount(t, h, 0)

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected send channel closed")
		}
	case <-time.After(time.Second):
		t.Fatal("expected send channel closed")
	}
}

func TestHubSkipsOwnRedisEvents(t *testing.T) {
	h := NewHubWithInstanceID(nil, "instance-a")
	go h.Run()
	defer h.Shutdown()

	userID := uuid.New()
	conn := &Connection{UserID: userID, Send: make(chan []byte, 4)}
	h.Register(conn)
	waitForCount(t, h, 1)

	event := userEventMessage{
		EventType:        "notification:new",
		UserID:           userID.String(),
		Payload:          json.RawMessage(`{"type":"ping"}`),
		SenderInstanceID: "instance-a",
	}
	payload, _ := json.Marshal(event)
	h.handleUserEventPayload(string(payload))

	select {
	case <-conn.Send:
		t.Fatal("expected events from this instance to be skipped")
	default:
	}

	// The same event from another instance goes through.
	event.SenderInstanceID = "instance-b"
	payload, _ = json.Marshal(event)
	h.handleUserEventPayload(string(payload))

	select {
	case data := <-conn.Send:
		if string(data) != `{"type":"ping"}` {
			t.Fatalf("unexpected payload %s", data)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event from another instance delivered")
	}
}

func TestHubPublishesForOtherInstances(t *testing.T) {
	h := NewHubWithInstanceID(nil, "instance-a")
	go h.Run()
	defer h.Shutdown()

	var published []byte
	h.publishUserEventFn = func(ctx context.Context, channel string, payload []byte) error {
		if channel != userEventsChannel {
			t.Errorf("unexpected channel %q", channel)
		}
		published = payload
		return nil
	}

	userID := uuid.New()
	if err := h.SendToUserJSON(userID, map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var event userEventMessage
	if err := json.Unmarshal(published, &event); err != nil {
		t.Fatalf("bad published payload: %v", err)
	}
	if event.UserID != userID.String() {
		t.Fatal("expected target user in event")
	}
	if event.SenderInstanceID != "instance-a" {
		t.Fatalf("expected sender instance id, got %q", event.SenderInstanceID)
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Shutdown()

	conn := &Connection{UserID: uuid.New(), Send: make(chan []byte, 1)}
	h.Register(conn)
	waitForCount(t, h, 1)

	// Second send overflows the buffer and is dropped, not blocked.
	done := make(chan struct{})
	go func() {
		h.SendToUserJSON(conn.UserID, map[string]string{"n": "1"})
		h.SendToUserJSON(conn.UserID, map[string]string{"n": "2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected sends to never block")
	}
}
