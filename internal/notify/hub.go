// Package notify fans out "the clip collection changed" events to any number
// of observers. Events carry no diff; observers re-query the store.
// Delivery is non-blocking: a subscriber that has not drained its previous
// event simply keeps that one, since a second pending "changed" adds nothing.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Event tells observers the collection changed. Reason is informational.
type Event struct {
	Reason string
	At     time.Time
}

// Subscription is one observer's registration with a Hub.
type Subscription struct {
	id   uint64
	hub  *Hub
	ch   chan Event
	once sync.Once
}

// C returns the channel events are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan Event { return s.ch }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub routes change events to all current subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
}

// New returns a Hub with no subscribers.
func New() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a new observer.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{id: h.nextID, hub: h, ch: make(chan Event, 1)}
	h.subs[s.id] = s

	slog.Debug("observer subscribed", "subscription", s.id, "total", len(h.subs))
	return s
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s.id)
	total := len(h.subs)
	close(s.ch)
	h.mu.Unlock()

	slog.Debug("observer unsubscribed", "subscription", s.id, "total", total)
}

// Publish delivers an event to every subscriber without blocking.
// Having no subscribers is not an error.
func (h *Hub) Publish(reason string) {
	ev := Event{Reason: reason, At: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			// already has an undelivered change pending
		}
	}
}

// Len returns the number of current subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
