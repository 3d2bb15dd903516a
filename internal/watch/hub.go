package watch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the post-update order snapshot pushed to watchers.
type Event struct {
	OrderID uuid.UUID
	Status  string
	At      time.Time
}

// subscriber channels are buffered; Notify never blocks on a slow
// consumer, the event is dropped for that subscriber instead.
const subscriberBuffer = 8

// Hub fans order status events out to per-order subscribers. Subscribe
// returns a disposable handle; there is no global registry to leak.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[int]chan Event
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[int]chan Event)}
}

// Subscribe registers interest in one order. The returned func
// unsubscribes and closes the channel; calling it twice is safe.
func (h *Hub) Subscribe(orderID uuid.UUID) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	id := h.nextID
	h.nextID++

	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[int]chan Event)
	}
	h.subs[orderID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs[orderID], id)
			if len(h.subs[orderID]) == 0 {
				delete(h.subs, orderID)
			}
			close(ch)
		})
	}

	return ch, cancel
}

// Notify delivers ev to every subscriber of its order.
func (h *Hub) Notify(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[ev.OrderID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports the number of active watchers for an order.
func (h *Hub) Subscribers(orderID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[orderID])
}
