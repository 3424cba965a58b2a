package realtime

// Event names pushed to connected kiosk, counter and display clients.
// queue_updated and config_updated carry no payload: clients are expected
// to re-fetch authoritative state. token_called carries the full token so
// displays can run the calling cue without another round trip.
const (
	EventQueueUpdated  = "queue_updated"
	EventTokenCalled   = "token_called"
	EventConfigUpdated = "config_updated"
)

// Broadcaster fans out change notifications to connected observers.
// Delivery is best-effort and at-most-once; there is no replay for clients
// that were disconnected. Publish never returns an error to the caller —
// a failed broadcast must not fail the state mutation that triggered it.
type Broadcaster interface {
	Publish(event string, payload any)
}

// Nop discards every event. Used in tests and by the seed command.
type Nop struct{}

func (Nop) Publish(string, any) {}
