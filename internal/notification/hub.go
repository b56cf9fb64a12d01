package notification

import (
	"context"
	"log"
	"sync"
)

// Observer reacts to a notification event. Observers run synchronously in
// subscription order; an observer that fails or panics is logged and the
// remaining observers still run. A failing observer can never roll back the
// order transition that triggered it.
type Observer func(ctx context.Context, ev Event) error

type subscription struct {
	name string
	fn   Observer
}

// Hub is the notification sink: an ordered list of observers registered at
// startup. It replaces the CMS-style global event trigger with explicit
// registration on an injected value.
type Hub struct {
	mu   sync.RWMutex
	subs []subscription
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(name string, fn Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, subscription{name: name, fn: fn})
}

// Publish delivers ev to every observer, best-effort.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, sub := range subs {
		h.deliver(ctx, sub, ev)
	}
}

func (h *Hub) deliver(ctx context.Context, sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Notification] Observer %s panicked on %s: %v", sub.name, ev.Type, r)
		}
	}()
	if err := sub.fn(ctx, ev); err != nil {
		log.Printf("[Notification] Observer %s failed on %s: %v", sub.name, ev.Type, err)
	}
}
