package kafka

import (
	"context"
	"fmt"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// EventPublisher routes domain events to their topics.
type EventPublisher struct {
	producer MessagePublisher
	topics   Topics
	source   string
	logger   logging.Logger
}

func NewEventPublisher(producer MessagePublisher, topics Topics, source string, log logging.Logger) *EventPublisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EventPublisher{producer: producer, topics: topics, source: source, logger: log.Named("event-publisher")}
}

func (p *EventPublisher) message(ev common.DomainEvent) (*common.ProducerMessage, error) {
	topic, ok := p.topics.For(ev.EventType())
	if !ok {
		return nil, errors.New(errors.ErrCodeMessageQueueError, "no topic for event type").
			WithDetail("event_type=" + ev.EventType())
	}
	env, err := NewEventEnvelope(p.source, ev)
	if err != nil {
		return nil, err
	}
	return env.ToMessage(topic)
}

// BatchPublisher is a producer that can write several messages in one call.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, msgs []*common.ProducerMessage) (*common.BatchPublishResult, error)
}

// Publish sends events in order and stops at the first failure; the producer's
// error is returned as is.  Several events go out as one batch when the
// producer supports it; every event is routed before anything is sent.
func (p *EventPublisher) Publish(ctx context.Context, events ...common.DomainEvent) error {
	if bp, ok := p.producer.(BatchPublisher); ok && len(events) > 1 {
		return p.publishBatch(ctx, bp, events)
	}
	for _, ev := range events {
		msg, err := p.message(ev)
		if err != nil {
			return err
		}
		if err := p.producer.Publish(ctx, msg); err != nil {
			return err
		}
		p.logger.Debug("Event published",
			logging.String("event_type", ev.EventType()),
			logging.String("topic", msg.Topic),
			logging.DesignID(ev.AggregateID()))
	}
	return nil
}

func (p *EventPublisher) publishBatch(ctx context.Context, bp BatchPublisher, events []common.DomainEvent) error {
	msgs := make([]*common.ProducerMessage, 0, len(events))
	for _, ev := range events {
		msg, err := p.message(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	res, err := bp.PublishBatch(ctx, msgs)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		first := res.Errors[0]
		return errors.Wrap(first.Error, errors.ErrCodeMessageQueueError, "event batch partially failed").
			WithDetail(fmt.Sprintf("failed=%d of %d", res.Failed, len(msgs)))
	}
	p.logger.Debug("Event batch published", logging.Int("events", len(msgs)))
	return nil
}

//Personal.AI order the ending
