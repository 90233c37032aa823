package kafka

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

const (
	defaultRetryBackoff = time.Second
	maxRetryBackoff     = 30 * time.Second
	fetchErrorPause     = time.Second
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessagePublisher is the producer side used for dead-lettering.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// RetryPolicy controls redelivery of failing messages.  Backoff doubles after
// each attempt up to 30s.
type RetryPolicy struct {
	MaxRetries      int
	Backoff         time.Duration
	DeadLetterTopic string
}

// ConsumerStats are cumulative counters since the consumer started.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
}

// Consumer dispatches messages of a consumer group to per-topic handlers.
// Offsets are committed after the handler (or the dead-letter write) is
// done, so a crash redelivers at most the in-flight message.
type Consumer struct {
	reader     ReaderInterface
	deadLetter MessagePublisher
	retry      RetryPolicy
	logger     logging.Logger

	handlers map[string]common.MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	consumed, processed, failed, retried, deadLettered atomic.Int64
}

// NewConsumer joins cfg.GroupID on topics.  When cfg.DLQEnabled is set,
// exhausted messages go to deadLetterTopic through a dedicated producer.
func NewConsumer(cfg config.KafkaConfig, topics []string, deadLetterTopic string, log logging.Logger) (*Consumer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka group id required")
	}
	if len(topics) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10 << 20,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
		SessionTimeout: 30 * time.Second,
		Dialer:         dialer,
	})

	policy := RetryPolicy{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff}
	var dlq MessagePublisher
	if cfg.DLQEnabled {
		p, err := NewProducer(cfg, log)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
		dlq = p
		policy.DeadLetterTopic = deadLetterTopic
	}
	return newConsumer(reader, dlq, policy, log), nil
}

func newConsumer(r ReaderInterface, dlq MessagePublisher, policy RetryPolicy, log logging.Logger) *Consumer {
	if policy.Backoff <= 0 {
		policy.Backoff = defaultRetryBackoff
	}
	return &Consumer{
		reader:     r,
		deadLetter: dlq,
		retry:      policy,
		logger:     log.Named("kafka-consumer"),
		handlers:   make(map[string]common.MessageHandler),
	}
}

// Subscribe routes messages of topic to handler, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("Subscribed to topic", logging.String("topic", topic))
}

// Start runs the consume loop in the background until Close or ctx ends.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)
	c.logger.Info("Kafka consumer started")
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("FetchMessage error", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchErrorPause):
			}
			continue
		}
		c.consumed.Add(1)
		c.dispatch(ctx, m)
		if ctx.Err() != nil {
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("CommitMessages failed", logging.Err(err), logging.String("topic", m.Topic))
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}

	c.mu.RLock()
	handler, ok := c.handlers[m.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("No handler for topic", logging.String("topic", m.Topic))
		return
	}

	if err := c.process(ctx, msg, handler); err != nil {
		c.failed.Add(1)
		return
	}
	c.processed.Add(1)
}

// process runs handler with retries.  A message that still fails is
// dead-lettered when a DLQ is configured, otherwise dropped.
func (c *Consumer) process(ctx context.Context, msg *common.Message, handler common.MessageHandler) error {
	err := handler(ctx, msg)
	if err == nil {
		return nil
	}

	backoff := c.retry.Backoff
	for i := 0; i < c.retry.MaxRetries; i++ {
		c.retried.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}

	c.logger.Error("Message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))

	if c.deadLetter == nil || c.retry.DeadLetterTopic == "" {
		return err
	}
	headers := make(map[string]string, len(msg.Headers)+3)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["original_offset"] = strconv.FormatInt(msg.Offset, 10)
	headers["error_message"] = err.Error()

	dl := &common.ProducerMessage{
		Topic:   c.retry.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
		c.logger.Error("Failed to send to dead letter queue", logging.Err(dlErr))
		return err
	}
	c.deadLettered.Add(1)
	return err
}

// Stats returns the consumer counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.consumed.Load(),
		Processed:    c.processed.Load(),
		Failed:       c.failed.Load(),
		Retried:      c.retried.Load(),
		DeadLettered: c.deadLettered.Load(),
	}
}

// Close stops the loop and releases the reader and the dead-letter producer.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()

	err := c.reader.Close()
	if p, ok := c.deadLetter.(*Producer); ok {
		_ = p.Close()
	}
	c.logger.Info("Kafka consumer closed", logging.Int64("consumed", c.consumed.Load()))
	return err
}

//Personal.AI order the ending
