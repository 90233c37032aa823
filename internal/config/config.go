// Package config loads the customizer configuration from YAML and
// CUSTOMIZER_* environment variables, fills defaults and validates it.
package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	Mode            string          `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	MaxBodySize     int64           `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	// APIKeys gate /api/v1 when non-empty.
	APIKeys []string `mapstructure:"api_keys"`
}

// RateLimitConfig controls the per-client token bucket in front of the API.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	Backend           string  `mapstructure:"backend"` // "memory" | "redis"
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// GRPCConfig holds the health/introspection gRPC listener settings.
type GRPCConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Port       int  `mapstructure:"port"`
	Reflection bool `mapstructure:"reflection"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DesignTTL    time.Duration `mapstructure:"design_ttl"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Apache Kafka producer/consumer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	ClientID     string        `mapstructure:"client_id"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	BatchSize    int           `mapstructure:"batch_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	DLQEnabled   bool          `mapstructure:"dlq_enabled"`

	// SASLMechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512; empty disables SASL.
	SASLMechanism string `mapstructure:"sasl_mechanism"`
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Region        string        `mapstructure:"region"`
	LogoBucket    string        `mapstructure:"logo_bucket"`
	TextureBucket string        `mapstructure:"texture_bucket"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency        int           `mapstructure:"concurrency"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryBackoff       time.Duration `mapstructure:"retry_backoff"`
	TextureLoadTimeout time.Duration `mapstructure:"texture_load_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level              string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format             string   `mapstructure:"format"` // "json" | "console"
	OutputPaths        []string `mapstructure:"output_paths"`
	SamplingInitial    int      `mapstructure:"sampling_initial"`
	SamplingThereafter int      `mapstructure:"sampling_thereafter"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// CustomizerConfig tunes the placement engine and texture synthesis.
type CustomizerConfig struct {
	TextureSize          int     `mapstructure:"texture_size"`
	TextureSeed          int64   `mapstructure:"texture_seed"`
	PremiumColor         string  `mapstructure:"premium_color"`
	FabricNoiseAmplitude float64 `mapstructure:"fabric_noise_amplitude"`
	FabricGridPeriod     int     `mapstructure:"fabric_grid_period"`
	CardSpeckleDensity   float64 `mapstructure:"card_speckle_density"`
	MaxLogoBytes         int64   `mapstructure:"max_logo_bytes"`
	MaxLogoDimension     int     `mapstructure:"max_logo_dimension"`
	LogoLoadConcurrency  int     `mapstructure:"logo_load_concurrency"`
}

// PricingConfig carries the flat logo fee and the per-product base prices.
// Amounts are integers in the currency's display unit.
type PricingConfig struct {
	Currency    string           `mapstructure:"currency"`
	FlatLogoFee int64            `mapstructure:"flat_logo_fee"`
	BasePrices  map[string]int64 `mapstructure:"base_prices"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and application service reads its settings from the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Customizer CustomizerConfig `mapstructure:"customizer"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("config: "+format, args...)
}

func checkPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return invalid("%s %d is out of range [1, 65535]", key, port)
	}
	return nil
}

func checkOneOf(key, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return invalid("%s %q is invalid; expected %s", key, value, strings.Join(allowed, "|"))
}

func checkRange(key string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return invalid("%s %g is out of range [%g, %g]", key, v, lo, hi)
	}
	return nil
}

func required(key, value string) error {
	if value == "" {
		return invalid("%s is required", key)
	}
	return nil
}

func atLeast(key string, v, floor int64) error {
	if v < floor {
		return invalid("%s must be >= %d, got %d", key, floor, v)
	}
	return nil
}

// Validate returns the first semantic problem of a fully defaulted Config.
// Callers treat any error as fatal.
func (c *Config) Validate() error {
	return firstError(c.validateServer, c.validateStores, c.validateRuntime, c.validateCustomizer)
}

func firstError(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	s, rl := c.Server, c.Server.RateLimit
	return firstError(
		func() error { return checkPort("server.port", s.Port) },
		func() error { return checkOneOf("server.mode", s.Mode, "debug", "release", "test") },
		func() error {
			if !rl.Enabled {
				return nil
			}
			if err := checkOneOf("server.rate_limit.backend", rl.Backend, "memory", "redis"); err != nil {
				return err
			}
			if rl.RequestsPerSecond <= 0 {
				return invalid("server.rate_limit.requests_per_second must be > 0")
			}
			return nil
		},
		func() error {
			if !c.GRPC.Enabled {
				return nil
			}
			if c.GRPC.Port == s.Port {
				return invalid("grpc.port must differ from server.port")
			}
			return checkPort("grpc.port", c.GRPC.Port)
		},
	)
}

func (c *Config) validateStores() error {
	db, r, k, m := c.Database, c.Redis, c.Kafka, c.MinIO
	return firstError(
		func() error { return required("database.host", db.Host) },
		func() error { return checkPort("database.port", db.Port) },
		func() error { return required("database.user", db.User) },
		func() error { return required("database.db_name", db.DBName) },
		func() error { return atLeast("database.max_open_conns", int64(db.MaxOpenConns), 1) },
		func() error { return required("redis.addr", r.Addr) },
		func() error { return atLeast("redis.db", int64(r.DB), 0) },
		func() error {
			if !k.Enabled {
				return nil
			}
			if len(k.Brokers) == 0 {
				return invalid("kafka.brokers must contain at least one broker address")
			}
			return required("kafka.group_id", k.GroupID)
		},
		func() error { return required("minio.endpoint", m.Endpoint) },
		func() error {
			if m.LogoBucket == "" || m.TextureBucket == "" {
				return invalid("minio.logo_bucket and minio.texture_bucket are required")
			}
			return nil
		},
	)
}

func (c *Config) validateRuntime() error {
	return firstError(
		func() error { return atLeast("worker.concurrency", int64(c.Worker.Concurrency), 1) },
		func() error { return checkOneOf("log.level", c.Log.Level, "debug", "info", "warn", "error") },
		func() error { return checkOneOf("log.format", c.Log.Format, "json", "console") },
	)
}

func (c *Config) validateCustomizer() error {
	cz, p := c.Customizer, c.Pricing
	return firstError(
		func() error { return checkRange("customizer.texture_size", float64(cz.TextureSize), 16, 4096) },
		func() error {
			if !hexColorPattern.MatchString(cz.PremiumColor) {
				return invalid("customizer.premium_color %q must be #RRGGBB", cz.PremiumColor)
			}
			return nil
		},
		func() error { return checkRange("customizer.fabric_noise_amplitude", cz.FabricNoiseAmplitude, 0, 0.1) },
		func() error { return atLeast("customizer.fabric_grid_period", int64(cz.FabricGridPeriod), 2) },
		func() error { return checkRange("customizer.card_speckle_density", cz.CardSpeckleDensity, 0, 1) },
		func() error { return checkRange("customizer.max_logo_dimension", float64(cz.MaxLogoDimension), 1, 16384) },
		func() error { return atLeast("pricing.flat_logo_fee", p.FlatLogoFee, 0) },
		func() error {
			for product, price := range p.BasePrices {
				if err := atLeast("pricing.base_prices["+product+"]", price, 0); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

//Personal.AI order the ending
