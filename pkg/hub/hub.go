// Package hub implements the typed publish/subscribe mechanism the engine
// uses for lifecycle notifications.
//
// The hub is a side channel: no handler's presence or absence changes engine
// behavior, and a failing handler never interrupts the publisher or the
// remaining subscribers.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dodgeblaster/orange-agent/internal/logging"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

// Handler reacts to a published event. Errors are collected by the publisher
// but never propagated to the engine.
type Handler func(ctx context.Context, evt domain.Event) error

type subscription struct {
	id      int
	handler Handler
}

// Hub is a typed event dispatcher. Safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[domain.EventType][]subscription
	logger *slog.Logger
}

// Option configures the Hub.
type Option func(*Hub)

// WithLogger sets a structured logger for handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[domain.EventType][]subscription),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a handler for the given event type and returns a
// function that removes it. Handlers fire in subscription order.
func (h *Hub) Subscribe(t domain.EventType, handler Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.subs[t] = append(h.subs[t], subscription{id: id, handler: handler})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		subs := h.subs[t]
		for i, s := range subs {
			if s.id == id {
				h.subs[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to every subscriber in subscription order and
// returns their errors. A failing or panicking handler does not stop the
// remaining handlers, and Publish itself never fails.
func (h *Hub) Publish(ctx context.Context, evt domain.Event) []error {
	var errs []error
	for _, s := range h.snapshot(evt.Type) {
		if err := h.invoke(ctx, s.handler, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// PublishAndWait delivers the event to every subscriber concurrently and
// blocks until all of them have settled. Handlers start in subscription order
// but may complete out of order; the aggregate wait is unordered.
func (h *Hub) PublishAndWait(ctx context.Context, evt domain.Event) []error {
	subs := h.snapshot(evt.Type)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, s := range subs {
		wg.Add(1)
		go func(s subscription) {
			defer wg.Done()
			if err := h.invoke(ctx, s.handler, evt); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()
	return errs
}

// UnsubscribeAll removes every subscriber for the given event types, or every
// subscriber of the hub when called without arguments.
func (h *Hub) UnsubscribeAll(types ...domain.EventType) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(types) == 0 {
		h.subs = make(map[domain.EventType][]subscription)
		return
	}
	for _, t := range types {
		delete(h.subs, t)
	}
}

// SubscriberCount returns the number of handlers registered for an event type.
func (h *Hub) SubscriberCount(t domain.EventType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[t])
}

func (h *Hub) snapshot(t domain.EventType) []subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]subscription, len(h.subs[t]))
	copy(out, h.subs[t])
	return out
}

// invoke runs one handler, converting a panic into an error so a misbehaving
// subscriber cannot take down the engine.
func (h *Hub) invoke(ctx context.Context, handler Handler, evt domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic on %s: %v", evt.Type, r)
			h.logger.Error("event handler panicked", "event", evt.Type, "err", err)
		}
	}()

	if err := handler(ctx, evt); err != nil {
		h.logger.Warn("event handler failed", "event", evt.Type, "err", err)
		return err
	}
	return nil
}
