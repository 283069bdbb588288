// Package sse fans events out to server-sent-event subscribers.
package sse

import (
	"sync"
)

// Event is one server-sent event. Data is encoded as JSON.
type Event struct {
	Name string
	Data any
}

// subscriberBuffer bounds how far a slow client may lag before events are dropped for it.
const subscriberBuffer = 10

type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Event]struct{})}
}

// Subscribe returns a channel of future events and a function that releases it.
// The release function is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	h.subscribers[ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, ch)
			close(ch)
		})
	}
	return ch, cleanup
}

// Publish delivers event to every subscriber without blocking. Subscribers
// whose buffer is full miss the event.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
