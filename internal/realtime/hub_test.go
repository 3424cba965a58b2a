package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildMessageEnvelope(t *testing.T) {
	msg, err := buildMessage(EventTokenCalled, map[string]any{"display_id": "A-103"})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	var envelope struct {
		Type      string          `json:"type"`
		Timestamp string          `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if envelope.Type != EventTokenCalled {
		t.Fatalf("type=%q, want %q", envelope.Type, EventTokenCalled)
	}
	if len(envelope.Data) == 0 {
		t.Fatal("token_called must carry a payload")
	}
	if _, err := time.Parse(time.RFC3339, envelope.Timestamp); err != nil {
		t.Fatalf("timestamp %q not RFC3339: %v", envelope.Timestamp, err)
	}
}

func TestBuildMessageWithoutPayload(t *testing.T) {
	msg, err := buildMessage(EventQueueUpdated, nil)
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(msg, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := envelope["data"]; ok {
		t.Fatal("queue_updated must not carry a data field")
	}
}

// Publishing with no connected clients must neither block nor panic;
// broadcast failure is swallowed at the point of use.
func TestPublishWithoutClients(t *testing.T) {
	h := NewHub()
	h.Publish(EventConfigUpdated, nil)
	h.Publish(EventTokenCalled, map[string]any{"id": 1})

	done := make(chan struct{})
	go func() {
		h.Publish(EventQueueUpdated, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestNopBroadcasterSatisfiesInterface(t *testing.T) {
	var b Broadcaster = Nop{}
	b.Publish(EventQueueUpdated, nil)
}
