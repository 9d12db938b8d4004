package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 100

type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{
		subscribers: make(map[string]chan Event),
	}
}

func (b *InMemoryBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		// Slow subscribers lose events rather than stall the request path.
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *InMemoryBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, exists := b.subscribers[id]; exists {
			close(ch)
			delete(b.subscribers, id)
		}
	}

	return ch, unsubscribe
}

// RecordAuthEvent publishes an auth attempt with a fresh id.
func (b *InMemoryBus) RecordAuthEvent(kind string, outcome string) {
	b.Publish(Event{
		ID:        uuid.NewString(),
		Type:      TypeFor(kind),
		Outcome:   outcome,
		Timestamp: time.Now().UTC(),
	})
}

// RunAuditLog writes every event on bus to logger until ctx is done.
func RunAuditLog(ctx context.Context, bus Bus, logger *slog.Logger) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			logger.Info("auth event",
				"event_id", e.ID,
				"type", string(e.Type),
				"outcome", e.Outcome,
				"at", e.Timestamp,
			)
		}
	}
}
