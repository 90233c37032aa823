// Package kafka carries design events between the API server and the texture
// worker.
package kafka

import (
	"cmp"
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

var ErrProducerClosed = errors.New(errors.ErrCodeMessageQueueError, "producer closed")

// DefaultMaxMessageBytes bounds a single event.  Quote requests embed a
// snapshot, which stays well below this.
const DefaultMaxMessageBytes = 1 << 20

const (
	defaultBatchSize    = 100
	defaultWriteTimeout = 10 * time.Second
	batchLinger         = 50 * time.Millisecond
)

// WriterInterface is the part of kafka.Writer the producer drives.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerStats are cumulative since the producer was created.
type ProducerStats struct {
	Sent   int64
	Failed int64
	Bytes  int64
}

type Producer struct {
	writer   WriterInterface
	maxBytes int
	logger   logging.Logger
	closed   atomic.Bool

	sent, failed, bytes atomic.Int64
}

// NewProducer creates a hash-balanced producer, so every event of one design
// lands on the same partition and keeps its order.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cmp.Or(cfg.BatchSize, defaultBatchSize),
		BatchTimeout: batchLinger,
		WriteTimeout: cmp.Or(cfg.WriteTimeout, defaultWriteTimeout),
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Transport:    transport,
	}
	return newProducerWithWriter(w, log), nil
}

func newProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, maxBytes: DefaultMaxMessageBytes, logger: log.Named("kafka-producer")}
}

func (p *Producer) check(msg *common.ProducerMessage) error {
	switch {
	case msg.Topic == "":
		return errors.New(errors.ErrCodeValidation, "topic required")
	case len(msg.Value) == 0:
		return errors.New(errors.ErrCodeValidation, "value required")
	case len(msg.Value) > p.maxBytes:
		return errors.New(errors.ErrCodeValidation, "message too large").
			WithDetail("topic=" + msg.Topic)
	}
	return nil
}

// Publish writes one message and waits for every in-sync replica.
func (p *Producer) Publish(ctx context.Context, msg *common.ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if err := p.check(msg); err != nil {
		return err
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish failed")
	}
	p.sent.Add(1)
	p.bytes.Add(int64(len(msg.Value)))
	p.logger.Debug("Message published",
		logging.String("topic", msg.Topic),
		logging.Int64("latency_ms", time.Since(start).Milliseconds()))
	return nil
}

// PublishBatch writes msgs in one call.  Per-message failures are reported in
// the result; the error is reserved for batches that were never attempted.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*common.ProducerMessage) (*common.BatchPublishResult, error) {
	if p.closed.Load() {
		return nil, ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "messages empty")
	}

	batch := make([]kafka.Message, len(msgs))
	var size int64
	for i, msg := range msgs {
		if err := p.check(msg); err != nil {
			return nil, err
		}
		batch[i] = toKafkaMessage(msg)
		size += int64(len(msg.Value))
	}

	res := tally(msgs, p.writer.WriteMessages(ctx, batch...))
	p.sent.Add(int64(res.Succeeded))
	p.failed.Add(int64(res.Failed))
	if res.Failed == 0 {
		p.bytes.Add(size)
	}
	p.logger.Info("Batch published",
		logging.Int("succeeded", res.Succeeded),
		logging.Int("failed", res.Failed))
	return res, nil
}

// tally splits a writer error into per-message outcomes.  An error that is
// not a kafka.WriteErrors fails the whole batch.
func tally(msgs []*common.ProducerMessage, err error) *common.BatchPublishResult {
	res := &common.BatchPublishResult{}
	if err == nil {
		res.Succeeded = len(msgs)
		return res
	}
	perMsg, ok := err.(kafka.WriteErrors)
	if !ok {
		res.Failed = len(msgs)
		res.Errors = []common.BatchItemError{{Index: -1, Error: err}}
		return res
	}
	for i, e := range perMsg {
		if e == nil {
			res.Succeeded++
			continue
		}
		res.Failed++
		res.Errors = append(res.Errors, common.BatchItemError{Index: i, Topic: msgs[i].Topic, Error: e})
	}
	return res
}

func (p *Producer) Stats() ProducerStats {
	return ProducerStats{Sent: p.sent.Load(), Failed: p.failed.Load(), Bytes: p.bytes.Load()}
}

// Close flushes pending writes.  Calls after the first are no-ops.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed",
		logging.Int64("sent", p.sent.Load()),
		logging.Int64("failed", p.failed.Load()))
	return err
}

func toKafkaMessage(msg *common.ProducerMessage) kafka.Message {
	km := kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Key:       msg.Key,
		Value:     msg.Value,
		Time:      msg.Timestamp,
	}
	if km.Time.IsZero() {
		km.Time = time.Now()
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

//Personal.AI order the ending
