// Package common holds the wire types shared by the API server, the worker
// and the Go client.
package common

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about one aggregate (a design) that other processes
// may react to.  Events are immutable once created.
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent carries the identity fields every DomainEvent embeds.
type BaseEvent struct {
	ID        string    `json:"event_id"`
	Type      string    `json:"event_type"`
	Timestamp time.Time `json:"occurred_at"`
	AggID     string    `json:"aggregate_id"`
}

// NewBaseEvent stamps a fresh event id and the current UTC time.
func NewBaseEvent(eventType, aggID string) BaseEvent {
	return NewBaseEventAt(eventType, aggID, time.Now())
}

// NewBaseEventAt is NewBaseEvent with an explicit occurrence time.
func NewBaseEventAt(eventType, aggID string, at time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at.UTC(),
		AggID:     aggID,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggID }

//Personal.AI order the ending
