// Package events provides the subscribe/emit plumbing shared by call
// session adapters.
package events

import (
	"sync"

	"frontdesk/internal/domain"
	"frontdesk/internal/ports"
)

// Hub fans session events out to subscribed handlers.
//
// Handlers run synchronously on the emitting goroutine, in subscription order.
type Hub struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[domain.EventName][]subscription
}

type subscription struct {
	id      uint64
	handler ports.EventHandler
}

func NewHub() *Hub {
	return &Hub{handlers: make(map[domain.EventName][]subscription)}
}

// Subscribe registers handler for name and returns a func that removes it.
// The returned func is safe to call more than once.
func (h *Hub) Subscribe(name domain.EventName, handler ports.EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.handlers[name] = append(h.handlers[name], subscription{id: id, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(name, id) })
	}
}

// Emit delivers event to every handler subscribed to event.Name.
func (h *Hub) Emit(event domain.CallEvent) {
	h.mu.RLock()
	subs := make([]subscription, len(h.handlers[event.Name]))
	copy(subs, h.handlers[event.Name])
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}

// Len returns the number of handlers subscribed to name.
func (h *Hub) Len(name domain.EventName) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[name])
}

func (h *Hub) remove(name domain.EventName, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.handlers[name]
	for i, sub := range subs {
		if sub.id == id {
			h.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(h.handlers[name]) == 0 {
		delete(h.handlers, name)
	}
}
