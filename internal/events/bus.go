package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Bus is an in-process pub/sub hub. Delivery never blocks the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event // eventType -> channels
	allSubs     []chan Event
	history     *EventLog // may be nil
	log         *slog.Logger
	closed      bool
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a new event bus. history may be nil to disable persistence.
func NewBus(history *EventLog, log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan Event),
		history:     history,
		log:         log.With("component", "events"),
	}
}

// Publish persists e when a log is attached and hands it to every matching
// subscriber. Full subscriber channels drop the event.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	typed := slices.Clone(b.subscribers[e.EventType()])
	all := slices.Clone(b.allSubs)
	b.mu.RUnlock()

	if b.history != nil {
		if _, err := b.history.Append(ctx, e); err != nil {
			// Delivery still proceeds.
			b.log.Error("failed to persist event", "type", e.EventType(), "error", err)
		}
	}

	b.deliver(typed, e)
	b.deliver(all, e)
	return nil
}

func (b *Bus) deliver(subs []chan Event, e Event) {
	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			b.log.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
}

// Subscribe returns a channel for events of a specific type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel for all events.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		if i := indexOf(subs, ch); i >= 0 {
			close(subs[i])
			b.subscribers[eventType] = slices.Delete(subs, i, i+1)
			return
		}
	}
	if i := indexOf(b.allSubs, ch); i >= 0 {
		close(b.allSubs[i])
		b.allSubs = slices.Delete(b.allSubs, i, i+1)
	}
}

func indexOf(subs []chan Event, ch <-chan Event) int {
	for i, sub := range subs {
		if sub == ch {
			return i
		}
	}
	return -1
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = nil

	for _, ch := range b.allSubs {
		close(ch)
	}
	b.allSubs = nil

	return nil
}
