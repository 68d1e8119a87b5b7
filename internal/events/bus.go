// Package events delivers committed domain facts to in-process subscribers.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/split_ledger/internal/core/domain"
)

// Handler reacts to a single committed fact.
type Handler func(ctx context.Context, event domain.Event) error

// Publisher hands committed facts to subscribers.
type Publisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}

// Bus is a synchronous, in-process publisher. Handlers run in subscription
// order on the publishing goroutine; a failing handler is logged and does not
// stop delivery to the others. Bus is safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	byType   map[string][]Handler
	wildcard []Handler
	logger   *slog.Logger
}

// NewBus creates an empty bus. A nil logger means slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		byType: make(map[string][]Handler),
		logger: logger,
	}
}

// Subscribe registers h for facts whose EventType equals eventType.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType[eventType] = append(b.byType[eventType], h)
}

// SubscribeAll registers h for every fact.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, h)
}

// Publish delivers events in order.
func (b *Bus) Publish(ctx context.Context, events ...domain.Event) {
	for _, e := range events {
		b.mu.RLock()
		handlers := make([]Handler, 0, len(b.byType[e.EventType()])+len(b.wildcard))
		handlers = append(handlers, b.byType[e.EventType()]...)
		handlers = append(handlers, b.wildcard...)
		b.mu.RUnlock()

		for _, h := range handlers {
			if err := h(ctx, e); err != nil {
				b.logger.Error("Event handler failed",
					slog.String("event_type", e.EventType()),
					slog.String("aggregate_id", e.AggregateID()),
					slog.String("error", err.Error()))
			}
		}
	}
}

// LogHandler returns a handler that records every fact at debug level.
func LogHandler(logger *slog.Logger) Handler {
	return func(ctx context.Context, e domain.Event) error {
		logger.DebugContext(ctx, "Domain event published",
			slog.String("event_type", e.EventType()),
			slog.String("aggregate_type", e.AggregateType()),
			slog.String("aggregate_id", e.AggregateID()),
			slog.Time("occurred_at", e.OccurredAt()))
		return nil
	}
}
