// Package events provides the in-process publish/subscribe bus used to announce
// session and admin lifecycle outcomes (for example "auth:login:success").
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Payload is the data delivered with an event.
type Payload = map[string]any

// Handler consumes an event published on a topic it subscribed to.
type Handler interface {
	Handle(ctx context.Context, topic string, payload Payload) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, topic string, payload Payload) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, topic string, payload Payload) error {
	if f == nil {
		return nil
	}
	return f(ctx, topic, payload)
}

// Subscription identifies a registered handler and is used to unsubscribe it.
type Subscription struct {
	ID    uuid.UUID
	Topic string
}

type subscriber struct {
	id      uuid.UUID
	handler Handler
}

// BusOptions groups dependencies for Bus.
type BusOptions struct {
	Logger *slog.Logger
}

// Bus delivers payloads synchronously to the handlers registered for an exact topic,
// in subscription order. Events published with no subscribers are dropped.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscriber
	logger *slog.Logger
}

// NewBus constructs an empty Bus.
func NewBus(opts BusOptions) *Bus {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]subscriber),
		logger: logger.With("component", "event_bus"),
	}
}

// Subscribe registers handler for topic.
func (b *Bus) Subscribe(topic string, handler Handler) Subscription {
	sub := subscriber{id: uuid.New(), handler: handler}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return Subscription{ID: sub.id, Topic: topic}
}

// SubscribeFunc is a convenience wrapper around Subscribe for plain functions.
func (b *Bus) SubscribeFunc(topic string, fn func(ctx context.Context, topic string, payload Payload) error) Subscription {
	return b.Subscribe(topic, HandlerFunc(fn))
}

// Unsubscribe removes the handler identified by sub. It reports whether a handler was removed.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.Topic]
	for i, s := range list {
		if s.id != sub.ID {
			continue
		}
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, sub.Topic)
		} else {
			b.subs[sub.Topic] = next
		}
		return true
	}
	return false
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Publish delivers payload to every handler subscribed to topic.
// A handler that fails or panics does not prevent delivery to the rest; all such
// failures are logged and returned joined.
func (b *Bus) Publish(ctx context.Context, topic string, payload Payload) error {
	b.mu.RLock()
	list := b.subs[topic]
	b.mu.RUnlock()

	if len(list) == 0 {
		return nil
	}

	var errs []error
	for _, s := range list {
		if err := deliver(ctx, s.handler, topic, payload); err != nil {
			b.logger.WarnContext(ctx, "event handler failed",
				"topic", topic,
				"subscription_id", s.id.String(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, h Handler, topic string, payload Payload) (err error) {
	if h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic on %s: %v", topic, r)
		}
	}()
	return h.Handle(ctx, topic, payload)
}
