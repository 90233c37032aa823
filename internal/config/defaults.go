// Package config provides configuration loading, defaults, and validation for
// the PrintShop customizer.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultServerMode = "release"
	DefaultGRPCPort   = 9090

	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBUser         = "customizer"
	DefaultDBName         = "customizer"
	DefaultDBMaxOpenConns = 25

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "customizer-worker"

	DefaultMinIOEndpoint      = "localhost:9000"
	DefaultMinIOLogoBucket    = "customizer-logos"
	DefaultMinIOTextureBucket = "customizer-textures"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 4

	DefaultTextureSize          = 256
	DefaultPremiumColor         = "#1A1A1A"
	DefaultFabricNoiseAmplitude = 0.08
	DefaultFabricGridPeriod     = 8
	DefaultCardSpeckleDensity   = 0.02
	DefaultMaxLogoBytes         = 5 << 20
	DefaultMaxLogoDimension     = 4096

	DefaultCurrency    = "INR"
	DefaultFlatLogoFee = 50
)

// DefaultBasePrices are the per-unit base prices used when the pricing
// section does not list any.
func DefaultBasePrices() map[string]int64 {
	return map[string]int64{
		"tshirt":        150,
		"hoodie":        450,
		"business-card": 2,
	}
}

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields already set by the caller are left unchanged.  It must run after
// unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 20 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 8 << 20
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.RateLimit.Backend == "" {
		cfg.Server.RateLimit.Backend = "memory"
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 20
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 40
	}

	// ── gRPC ──────────────────────────────────────────────────────────────────
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 20
	}
	if cfg.Redis.DesignTTL == 0 {
		cfg.Redis.DesignTTL = 10 * time.Minute
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = 10 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "customizer:"
	}
	// DB 0 is both the default and a valid explicit value.

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = "customizer"
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = "customizer"
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = 500 * time.Millisecond
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = "us-east-1"
	}
	if cfg.MinIO.LogoBucket == "" {
		cfg.MinIO.LogoBucket = DefaultMinIOLogoBucket
	}
	if cfg.MinIO.TextureBucket == "" {
		cfg.MinIO.TextureBucket = DefaultMinIOTextureBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = time.Hour
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = time.Second
	}
	if cfg.Worker.TextureLoadTimeout == 0 {
		cfg.Worker.TextureLoadTimeout = 30 * time.Second
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "customizer"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// ── Customizer ────────────────────────────────────────────────────────────
	if cfg.Customizer.TextureSize == 0 {
		cfg.Customizer.TextureSize = DefaultTextureSize
	}
	if cfg.Customizer.PremiumColor == "" {
		cfg.Customizer.PremiumColor = DefaultPremiumColor
	}
	if cfg.Customizer.FabricNoiseAmplitude == 0 {
		cfg.Customizer.FabricNoiseAmplitude = DefaultFabricNoiseAmplitude
	}
	if cfg.Customizer.FabricGridPeriod == 0 {
		cfg.Customizer.FabricGridPeriod = DefaultFabricGridPeriod
	}
	if cfg.Customizer.CardSpeckleDensity == 0 {
		cfg.Customizer.CardSpeckleDensity = DefaultCardSpeckleDensity
	}
	if cfg.Customizer.MaxLogoBytes == 0 {
		cfg.Customizer.MaxLogoBytes = DefaultMaxLogoBytes
	}
	if cfg.Customizer.MaxLogoDimension == 0 {
		cfg.Customizer.MaxLogoDimension = DefaultMaxLogoDimension
	}
	if cfg.Customizer.LogoLoadConcurrency == 0 {
		cfg.Customizer.LogoLoadConcurrency = 4
	}

	// ── Pricing ───────────────────────────────────────────────────────────────
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = DefaultCurrency
	}
	if cfg.Pricing.FlatLogoFee == 0 {
		cfg.Pricing.FlatLogoFee = DefaultFlatLogoFee
	}
	if len(cfg.Pricing.BasePrices) == 0 {
		cfg.Pricing.BasePrices = DefaultBasePrices()
	}
}

// NewDefaultConfig returns a Config populated only with defaults.  It is used
// by the CLI for offline commands and by tests.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
