// Package app assembles the infrastructure clients and application services
// shared by the API server and the texture worker.
package app

import (
	"context"
	"fmt"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/application/rendering"
	"github.com/turtacn/PrintShop-Customizer/internal/config"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/database/postgres"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/database/redis"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/storage/minio"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure
// ─────────────────────────────────────────────────────────────────────────────

// Infrastructure holds the connected backing services of one process.
// Producer is nil when Kafka is disabled.
type Infrastructure struct {
	Postgres *postgres.Connection
	Redis    *redis.Client
	MinIO    *minio.Client
	Producer *kafka.Producer

	// Collector is nil when metrics are disabled.
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	logger logging.Logger
}

// Check is a named dependency probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// OpenInfrastructure connects every backing service named by cfg.  On error
// the services opened so far are closed.
func OpenInfrastructure(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{logger: logger}

	collector, metrics, err := NewMetrics(cfg.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	infra.Collector, infra.Metrics = collector, metrics

	pg, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	infra.Postgres = pg
	if cfg.Database.AutoMigrate {
		if err := pg.Migrate(); err != nil {
			infra.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
	}

	rc, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	infra.Redis = rc

	mc, err := minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("minio: %w", err)
	}
	infra.MinIO = mc

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		infra.Producer = producer
		ensureTopics(ctx, cfg.Kafka, logger)
	}

	logger.Info("infrastructure initialized", logging.Bool("kafka", infra.Producer != nil))
	return infra, nil
}

// ensureTopics provisions the event topics.  Failure is logged only: brokers
// with auto-creation enabled work without it.
func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopics(ctx, TopicConfigs(kafka.NewTopics(cfg.TopicPrefix))); err != nil {
		logger.Warn("failed to provision kafka topics", logging.Err(err))
	}
}

// TopicConfigs lists the topics to provision for t on a single-broker
// cluster; production clusters are provisioned out of band.
func TopicConfigs(t kafka.Topics) []common.TopicConfig {
	return t.Definitions(1)
}

// Checks returns a probe per connected dependency.
func (i *Infrastructure) Checks() []Check {
	var checks []Check
	if i.Postgres != nil {
		checks = append(checks, Check{Name: "postgres", Probe: i.Postgres.HealthCheck})
	}
	if i.Redis != nil {
		checks = append(checks, Check{Name: "redis", Probe: i.Redis.HealthCheck})
	}
	if i.MinIO != nil {
		checks = append(checks, Check{Name: "minio", Probe: i.MinIO.HealthCheck})
	}
	return checks
}

// Close releases every opened service in reverse order of opening.
func (i *Infrastructure) Close() {
	closers := []struct {
		name  string
		close func() error
	}{
		{"kafka", func() error { return closeIf(i.Producer != nil, i.Producer) }},
		{"minio", func() error { return closeIf(i.MinIO != nil, i.MinIO) }},
		{"redis", func() error { return closeIf(i.Redis != nil, i.Redis) }},
		{"postgres", func() error { return closeIf(i.Postgres != nil, i.Postgres) }},
	}
	for _, c := range closers {
		if err := c.close(); err != nil && i.logger != nil {
			i.logger.Warn("failed to close "+c.name, logging.Err(err))
		}
	}
}

type closer interface{ Close() error }

func closeIf(open bool, c closer) error {
	if !open {
		return nil
	}
	return c.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Services
// ─────────────────────────────────────────────────────────────────────────────

// Services are the application services built over an Infrastructure.
type Services struct {
	Catalog   *domain.Catalog
	Policy    pricing.Policy
	Designs   appcustomization.Service
	Rendering rendering.Service
	Topics    kafka.Topics
}

// ServiceOptions tune NewServices per process.
type ServiceOptions struct {
	// Source names the emitting process in published event envelopes.
	Source string
	// BackgroundResolve loads textures in-process after uploads.
	BackgroundResolve bool
}

// NewServices wires the design and rendering services.
func NewServices(cfg *config.Config, infra *Infrastructure, opts ServiceOptions, logger logging.Logger) (*Services, error) {
	catalog := domain.DefaultCatalog()
	policy, err := pricing.PolicyFromTable(cfg.Pricing.FlatLogoFee, cfg.Pricing.Currency, cfg.Pricing.BasePrices)
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}

	db := infra.Postgres.DB()
	cache := redis.NewDesignCache(redis.NewRedisCache(infra.Redis, logger), cfg.Redis.DesignTTL)
	locker := redis.NewLockFactory(infra.Redis, logger, redis.WithLockTTL(cfg.Redis.LockTTL))
	logos := minio.NewLogoStore(infra.MinIO, logger)
	loader := render.NewLoader(logos, logger,
		render.WithConcurrency(cfg.Customizer.LogoLoadConcurrency),
		render.WithLoadTimeout(cfg.Worker.TextureLoadTimeout),
		render.WithMaxDimension(cfg.Customizer.MaxLogoDimension),
	)

	topics := kafka.NewTopics(cfg.Kafka.TopicPrefix)
	var publisher appcustomization.EventPublisher = appcustomization.NopPublisher{}
	if infra.Producer != nil {
		publisher = kafka.NewEventPublisher(infra.Producer, topics, opts.Source, logger)
	}

	designs := appcustomization.NewService(
		catalog,
		repositories.NewDesignRepository(db, catalog, logger),
		repositories.NewQuoteRequestRepository(db),
		policy,
		cache,
		locker,
		logos,
		loader,
		publisher,
		infra.Metrics,
		logger,
		appcustomization.ServiceConfig{
			MaxLogoBytes:      cfg.Customizer.MaxLogoBytes,
			MaxLogoDimension:  cfg.Customizer.MaxLogoDimension,
			BackgroundResolve: opts.BackgroundResolve,
			ResolveTimeout:    cfg.Worker.TextureLoadTimeout,
		},
	)

	textures := rendering.NewService(catalog, minio.NewTextureStore(infra.MinIO, logger), designs,
		TextureConfig(cfg.Customizer), infra.Metrics, logger)

	return &Services{
		Catalog:   catalog,
		Policy:    policy,
		Designs:   designs,
		Rendering: textures,
		Topics:    topics,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Config mapping
// ─────────────────────────────────────────────────────────────────────────────

// NewLogger builds the process logger from cfg.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(LoggerConfig(cfg))
}

func LoggerConfig(cfg config.LogConfig) logging.LogConfig {
	return logging.LogConfig{
		Level:              cfg.Level,
		Format:             cfg.Format,
		OutputPaths:        cfg.OutputPaths,
		SamplingInitial:    cfg.SamplingInitial,
		SamplingThereafter: cfg.SamplingThereafter,
	}
}

// NewMetrics returns a nil collector and no-op metrics when disabled.
func NewMetrics(cfg config.MetricsConfig, logger logging.Logger) (prometheus.MetricsCollector, *prometheus.AppMetrics, error) {
	if !cfg.Enabled {
		return nil, prometheus.NewNoopAppMetrics(), nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return collector, prometheus.NewAppMetrics(collector), nil
}

// TextureConfig overlays the configured synthesis parameters on the
// defaults.  Zero values keep the default.
func TextureConfig(cfg config.CustomizerConfig) rendering.Config {
	opts := render.DefaultTextureOptions()
	if cfg.TextureSize > 0 {
		opts.Size = cfg.TextureSize
	}
	if cfg.FabricNoiseAmplitude > 0 {
		opts.FabricNoiseAmplitude = cfg.FabricNoiseAmplitude
	}
	if cfg.FabricGridPeriod > 0 {
		opts.FabricGridPeriod = cfg.FabricGridPeriod
	}
	if cfg.CardSpeckleDensity > 0 {
		opts.CardSpeckleDensity = cfg.CardSpeckleDensity
	}
	if cfg.PremiumColor != "" {
		opts.PremiumColor = cfg.PremiumColor
	}
	var seed uint64
	if cfg.TextureSeed > 0 {
		seed = uint64(cfg.TextureSeed)
	}
	return rendering.Config{Options: opts, Seed: seed}
}

//Personal.AI order the ending
