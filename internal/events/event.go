// Package events carries batch and job lifecycle events to subscribers and
// the run history log.
package events

import (
	"context"
	"time"
)

// Event is the base interface all events implement.
type Event interface {
	EventType() string
	EntityType() string // "batch", "job"
	EntityID() string
	OccurredAt() time.Time
}

// Publisher accepts events. *Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        string    `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() string      { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent creates a BaseEvent with the current timestamp.
func NewBaseEvent(eventType, entityType, entityID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now(),
	}
}
