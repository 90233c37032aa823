// Package redis wraps go-redis with the design cache, per-design locks and the
// shared rate-limit buckets used by the API.
package redis

import (
	"cmp"
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

const defaultKeyPrefix = "customizer:"

// Client is a closable handle over one go-redis client.  Commands issued
// after Close fail with ErrClientClosed instead of reaching the pool.
type Client struct {
	rdb    redis.UniversalClient
	prefix string
	logger logging.Logger
	closed atomic.Bool
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	io := 3 * time.Second
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cmp.Or(cfg.PoolSize, 20),
		MinIdleConns: cmp.Or(cfg.MinIdleConns, 5),
		DialTimeout:  cmp.Or(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  cmp.Or(cfg.ReadTimeout, io),
		WriteTimeout: cmp.Or(cfg.WriteTimeout, io),
	}
}

// NewClient dials cfg.Addr and fails unless the server answers PING within
// the dial timeout.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	opts := redisOptions(cfg)
	c := &Client{
		rdb:    redis.NewClient(opts),
		prefix: cmp.Or(cfg.KeyPrefix, defaultKeyPrefix),
		logger: log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		_ = c.rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}
	log.Info("Redis client connected", logging.String("addr", opts.Addr), logging.Int("db", opts.DB))
	return c, nil
}

// Key joins parts with ":" under the configured namespace.
func (c *Client) Key(parts ...string) string {
	return c.prefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// HealthCheck is the readiness probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis health check failed")
	}
	return nil
}

// Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
		return err
	}
	c.logger.Info("Closed Redis client")
	return nil
}

// GetUnderlyingClient exposes go-redis for scripts and pipelines.
func (c *Client) GetUnderlyingClient() redis.UniversalClient { return c.rdb }

// rejected fails cmd with ErrClientClosed.
func rejected[C interface{ SetErr(error) }](cmd C) C {
	cmd.SetErr(ErrClientClosed)
	return cmd
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if c.closed.Load() {
		return rejected(redis.NewStringCmd(ctx))
	}
	return c.rdb.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if c.closed.Load() {
		return rejected(redis.NewStatusCmd(ctx))
	}
	return c.rdb.Set(ctx, key, value, ttl)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.closed.Load() {
		return rejected(redis.NewIntCmd(ctx))
	}
	return c.rdb.Del(ctx, keys...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.closed.Load() {
		return rejected(redis.NewIntCmd(ctx))
	}
	return c.rdb.Exists(ctx, keys...)
}

func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	if c.closed.Load() {
		return rejected(redis.NewDurationCmd(ctx, time.Second))
	}
	return c.rdb.TTL(ctx, key)
}

func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	if c.closed.Load() {
		return rejected(redis.NewScanCmd(ctx, nil))
	}
	return c.rdb.Scan(ctx, cursor, match, count)
}

//Personal.AI order the ending
