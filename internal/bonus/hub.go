package bonus

import "sync"

// Hub fans wagering progress updates out to per-account subscribers. Sends
// never block; a subscriber that falls behind misses updates.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64][]chan Update
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint64][]chan Update)}
}

func (h *Hub) Subscribe(accountID uint64) <-chan Update {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Update, 10)
	h.subscribers[accountID] = append(h.subscribers[accountID], ch)
	return ch
}

func (h *Hub) Unsubscribe(accountID uint64, ch <-chan Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[accountID]
	for i, sub := range subs {
		if sub == ch {
			h.subscribers[accountID] = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
	if len(h.subscribers[accountID]) == 0 {
		delete(h.subscribers, accountID)
	}
}

func (h *Hub) Notify(accountID uint64, update Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[accountID] {
		select {
		case ch <- update:
		default:
			// channel full, skip
		}
	}
}
