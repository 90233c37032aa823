package kafka

import (
	"encoding/json"
	"time"

	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

const envelopeSchema = "v1"

// EventEnvelope is the JSON value of every message: routing metadata plus
// the domain event as an opaque payload.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	AggregateID   string            `json:"aggregate_id"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func NewEventEnvelope(source string, event common.DomainEvent) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		Source:        source,
		Timestamp:     event.OccurredAt(),
		SchemaVersion: envelopeSchema,
		AggregateID:   event.AggregateID(),
		Payload:       payload,
	}, nil
}

// DecodePayload fails on an absent or null payload as well as a malformed one.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event has no payload").WithDetail("event_type=" + e.EventType)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload").
			WithDetail("event_type=" + e.EventType)
	}
	return nil
}

// ToMessage keys by aggregate id so every event of one design lands on one
// partition, in order.
func (e *EventEnvelope) ToMessage(topic string) (*common.ProducerMessage, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &common.ProducerMessage{
		Topic:     topic,
		Key:       []byte(e.AggregateID),
		Value:     value,
		Timestamp: e.Timestamp,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
	}, nil
}

func MessageToEventEnvelope(msg *common.Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	env := new(EventEnvelope)
	if err := json.Unmarshal(msg.Value, env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return env, nil
}

//Personal.AI order the ending
