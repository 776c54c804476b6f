package notify

import (
	"sync"
	"time"

	"github.com/mellowshop/orderdesk/internal/domain/model"
)

// OrderEvent describes an observed order change. Events are advisory: the
// write path never depends on their delivery.
type OrderEvent struct {
	OrderID       string
	Number        string
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	UpdatedAt     time.Time
}

// Hub is an in-process publish/subscribe channel for order changes,
// decoupled from the reconciliation write path.
type Hub struct {
	mu     sync.Mutex
	subs   map[int64]chan OrderEvent
	next   int64
	buffer int
	closed bool
}

// NewHub creates a hub with the given per-subscriber buffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[int64]chan OrderEvent), buffer: buffer}
}

// Subscribe registers a subscriber and returns its channel along with an
// unsubscribe function. The channel is closed on unsubscribe or hub close.
func (h *Hub) Subscribe() (<-chan OrderEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan OrderEvent)
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	ch := make(chan OrderEvent, h.buffer)
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// Publish fans the event out to all subscribers. Slow subscribers drop
// events rather than block the publisher.
func (h *Hub) Publish(event OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close shuts down all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
