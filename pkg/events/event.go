// Package events defines the domain event contract shared by aggregates and
// the messaging adapters that publish them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every event an aggregate records.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields of a DomainEvent. Embed it in concrete
// events; it is excluded from JSON payloads so that only the event body is
// serialized.
type BaseEvent struct {
	occurredAt    time.Time
	eventType     string
	aggregateType string
	id            uuid.UUID
	aggregateID   uuid.UUID
}

// NewBaseEvent creates an envelope with a fresh ID, stamped at occurredAt.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.id }
func (e BaseEvent) EventType() string      { return e.eventType }
func (e BaseEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e BaseEvent) AggregateType() string  { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time  { return e.occurredAt }

// Collector is embedded in aggregates to accumulate events between saves.
type Collector struct {
	pending []DomainEvent
}

// Record appends events in order.
func (c *Collector) Record(evts ...DomainEvent) {
	c.pending = append(c.pending, evts...)
}

// Pending returns the recorded events without clearing them.
func (c *Collector) Pending() []DomainEvent {
	return c.pending
}

// Drain returns the recorded events and resets the collector.
func (c *Collector) Drain() []DomainEvent {
	out := c.pending
	c.pending = nil
	return out
}
