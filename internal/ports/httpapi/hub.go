package httpapi

import (
	"encoding/json"
	"sync"

	"bigtwo/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Observer is the seat of a stream subscriber that holds no seat. It only receives broadcast events.
const Observer = -1

// subscriberBuffer is how many messages a stream may fall behind before it is dropped.
const subscriberBuffer = 64

// Message is one frame sent down a stream.
type Message struct {
	Type    string `json:"type"`
	GameID  string `json:"game_id"`
	Payload any    `json:"payload"`
}

// Subscription receives the encoded messages of one game. C is closed when the subscriber is dropped.
type Subscription struct {
	Seat int
	C    <-chan []byte
	ch   chan []byte
}

// Hub fans table events out to stream subscribers. It implements app.Broadcaster.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	logger runtime.Logger
}

var _ app.Broadcaster = (*Hub)(nil)

func NewHub(logger runtime.Logger) *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), logger: logger}
}

// Subscribe registers a stream for gameID. Pass Observer for seat to receive public events only.
func (h *Hub) Subscribe(gameID string, seat int) *Subscription {
	ch := make(chan []byte, subscriberBuffer)
	s := &Subscription{Seat: seat, C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*Subscription]struct{})
	}
	h.subs[gameID][s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call after the hub dropped it.
func (h *Hub) Unsubscribe(gameID string, s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(gameID, s)
}

func (h *Hub) removeLocked(gameID string, s *Subscription) {
	subs, ok := h.subs[gameID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.ch)
	if len(subs) == 0 {
		delete(h.subs, gameID)
	}
}

// Subscribers returns how many streams follow gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// Publish never blocks: a subscriber whose buffer is full is dropped and has to reconnect.
func (h *Hub) Publish(ev app.Event) {
	data, err := json.Marshal(Message{Type: string(ev.Kind), GameID: ev.GameID, Payload: ev.Payload})
	if err != nil {
		h.logger.WithField("game_id", ev.GameID).Error("failed to encode %s event: %v", ev.Kind, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[ev.GameID] {
		if !addressedTo(ev.Recipients, s.Seat) {
			continue
		}
		select {
		case s.ch <- data:
		default:
			h.logger.WithFields(map[string]interface{}{
				"game_id": ev.GameID,
				"seat":    s.Seat,
			}).Warn("dropping slow stream subscriber")
			h.removeLocked(ev.GameID, s)
		}
	}
}

func addressedTo(recipients []int, seat int) bool {
	if len(recipients) == 0 {
		return true
	}
	for _, r := range recipients {
		if r == seat {
			return true
		}
	}
	return false
}
