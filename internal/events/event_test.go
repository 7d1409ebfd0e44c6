package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "test.event",
		Entity:    EntityJob,
		ID:        "run/42",
		Timestamp: now,
	}

	assert.Equal(t, "test.event", e.EventType())
	assert.Equal(t, EntityJob, e.EntityType())
	assert.Equal(t, "run/42", e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventBatchStarted, EntityBatch, "run")

	assert.Equal(t, EventBatchStarted, e.EventType())
	assert.Equal(t, EntityBatch, e.EntityType())
	assert.Equal(t, "run", e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}
