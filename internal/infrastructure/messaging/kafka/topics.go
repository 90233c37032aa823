package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// Topics holds the qualified topic names, "<prefix>.<event type>".
type Topics struct {
	LogoUploaded       string
	DesignColorChanged string
	QuoteRequested     string
	DeadLetter         string
}

func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = "customizer"
	}
	q := func(name string) string { return prefix + "." + name }
	return Topics{
		LogoUploaded:       q(customization.EventLogoUploaded),
		DesignColorChanged: q(customization.EventDesignColorChanged),
		QuoteRequested:     q(pricing.EventQuoteRequested),
		DeadLetter:         q("dead_letter"),
	}
}

// For is the topic an event type is routed to.
func (t Topics) For(eventType string) (string, bool) {
	switch eventType {
	case customization.EventLogoUploaded:
		return t.LogoUploaded, true
	case customization.EventDesignColorChanged:
		return t.DesignColorChanged, true
	case pricing.EventQuoteRequested:
		return t.QuoteRequested, true
	default:
		return "", false
	}
}

// WorkerTopics are the events that invalidate textures.
func (t Topics) WorkerTopics() []string {
	return []string{t.LogoUploaded, t.DesignColorChanged}
}

const day = 24 * time.Hour

// Definitions sizes each topic.  Quote requests are kept for a quarter since
// sales follow up on them; texture triggers are worthless after a few days.
func (t Topics) Definitions(replication int) []common.TopicConfig {
	replication = max(replication, 1)
	def := func(name string, partitions int, retention time.Duration) common.TopicConfig {
		return common.TopicConfig{
			Name:              name,
			NumPartitions:     partitions,
			ReplicationFactor: replication,
			RetentionMs:       retention.Milliseconds(),
		}
	}
	return []common.TopicConfig{
		def(t.LogoUploaded, 6, 7*day),
		def(t.DesignColorChanged, 6, 3*day),
		def(t.QuoteRequested, 3, 90*day),
		def(t.DeadLetter, 3, 30*day),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Provisioning
// ─────────────────────────────────────────────────────────────────────────────

// ConnInterface is the part of *kafka.Conn topic provisioning needs.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates missing topics through one broker connection.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, log logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to dial kafka")
	}
	return &TopicManager{conn: conn, logger: log}, nil
}

func toKafkaTopic(cfg common.TopicConfig) kafka.TopicConfig {
	kt := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	entry := func(k, v string) {
		kt.ConfigEntries = append(kt.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: v})
	}
	if cfg.RetentionMs > 0 {
		entry("retention.ms", strconv.FormatInt(cfg.RetentionMs, 10))
	}
	if cfg.CleanupPolicy != "" {
		entry("cleanup.policy", cfg.CleanupPolicy)
	}
	for k, v := range cfg.Configs {
		entry(k, v)
	}
	return kt
}

// CreateTopic creates cfg unless a topic of that name already exists.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg common.TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 || cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "partitions and replication factor must be > 0").
			WithDetail("topic=" + cfg.Name)
	}
	if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
		return nil
	}
	if err := m.conn.CreateTopics(toKafkaTopic(cfg)); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create topic").WithDetail("topic=" + cfg.Name)
	}
	m.logger.Info("Topic created", logging.String("topic", cfg.Name), logging.Int("partitions", cfg.NumPartitions))
	return nil
}

// TopicExists treats any metadata error as "missing"; CreateTopic then
// surfaces the real problem.
func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	parts, err := m.conn.ReadPartitions(name)
	return err == nil && len(parts) > 0, nil
}

// EnsureTopics stops at the first topic that cannot be created.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []common.TopicConfig) error {
	for _, t := range topics {
		if err := m.CreateTopic(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error { return m.conn.Close() }

//Personal.AI order the ending
