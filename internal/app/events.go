package app

import "bigtwo/internal/domain"

// EventKind identifies events emitted by a table for host dispatch.
type EventKind string

const (
	EventHandDealt   EventKind = "hand_dealt"
	EventDelta       EventKind = "delta"
	EventQuarantined EventKind = "quarantined"
)

// Event is a table event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	GameID     string
	Payload    any
	Recipients []int // seats; empty means broadcast
}

// Broadcaster fans events out to observers. Publish is called while the table lock is held and must not block.
type Broadcaster interface {
	Publish(ev Event)
}

// BroadcasterFunc adapts a function to Broadcaster.
type BroadcasterFunc func(ev Event)

func (f BroadcasterFunc) Publish(ev Event) { f(ev) }

type discardBroadcaster struct{}

func (discardBroadcaster) Publish(Event) {}

// HandDealtPayload is delivered privately to the seat that holds the hand.
type HandDealtPayload struct {
	Match int           `json:"match"`
	Seat  int           `json:"seat"`
	Hand  []domain.Card `json:"hand"`
	Lead  int           `json:"lead"`
}

// QuarantinedPayload tells observers a game stopped accepting actions.
type QuarantinedPayload struct {
	Version uint64 `json:"version"`
	Error   string `json:"error"`
}
