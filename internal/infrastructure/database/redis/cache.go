package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

const scanBatch = 100

// Cache stores JSON values under the client's key prefix.  A zero ttl means
// the cache's default.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// SetIfNewer writes value unless the entry already cached under key
	// carries a "version" field greater than version.
	SetIfNewer(ctx context.Context, key string, value interface{}, version int64, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type jsonCache struct {
	client     *Client
	logger     logging.Logger
	defaultTTL time.Duration
	spread     func(time.Duration) time.Duration
	loads      singleflight.Group
}

type CacheOption func(*jsonCache)

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *jsonCache) { c.defaultTTL = ttl }
}

// WithoutJitter stores every entry with exactly the requested ttl.
func WithoutJitter() CacheOption {
	return func(c *jsonCache) { c.spread = func(d time.Duration) time.Duration { return d } }
}

// tenPercentJitter spreads expirations over ±10% so entries written together
// do not all expire together.
func tenPercentJitter(d time.Duration) time.Duration {
	return d + time.Duration(float64(d)*0.1*(2*rand.Float64()-1))
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &jsonCache{client: client, logger: log, defaultTTL: 10 * time.Minute, spread: tenPercentJitter}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *jsonCache) expiry(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	return c.spread(ttl)
}

func (c *jsonCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, c.client.Key(key)).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	return decode(raw, dest)
}

func (c *jsonCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return c.put(ctx, key, raw, ttl)
}

func (c *jsonCache) put(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.client.Key(key), raw, c.expiry(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write cache")
	}
	return nil
}

// newerScript keeps KEYS[1] when its JSON "version" exceeds ARGV[2].  An
// unreadable entry is overwritten.
var newerScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	local ok, rec = pcall(cjson.decode, cur)
	if ok and type(rec) == "table" and tonumber(rec.version) and tonumber(rec.version) > tonumber(ARGV[2]) then
		return 0
	end
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

func (c *jsonCache) SetIfNewer(ctx context.Context, key string, value interface{}, version int64, ttl time.Duration) (bool, error) {
	if c.client.closed.Load() {
		return false, ErrClientClosed
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, ErrSerializationFailed.WithCause(err)
	}
	ms := max(c.expiry(ttl).Milliseconds(), 1)
	n, err := newerScript.Run(ctx, c.client.GetUnderlyingClient(), []string{c.client.Key(key)}, raw, version, ms).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to write cache")
	}
	return n == 1, nil
}

func (c *jsonCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.client.Key(k))
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
	}
	return nil
}

func (c *jsonCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.client.Key(key)).Result()
	return n > 0, err
}

// GetOrSet falls back to loader on a miss or a read failure.  Concurrent
// callers missing the same key share one loader call and its encoded result.
func (c *jsonCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss {
		c.logger.Warn("Cache read failed, falling back to loader", logging.String("key", key), logging.Err(err))
	}

	shared, err, _ := c.loads.Do(key, func() (interface{}, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, ErrSerializationFailed.WithCause(err)
		}
		if err := c.put(ctx, key, raw, ttl); err != nil {
			c.logger.Warn("Failed to set cache in GetOrSet", logging.String("key", key), logging.Err(err))
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return decode(shared.([]byte), dest)
}

// DeleteByPrefix scans rather than KEYS so a large keyspace never blocks the
// server.
func (c *jsonCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var (
		removed int64
		cursor  uint64
	)
	pattern := c.client.Key(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return removed, err
			}
			removed += int64(len(keys))
		}
		if cursor = next; cursor == 0 {
			return removed, nil
		}
	}
}

func (c *jsonCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.client.TTL(ctx, c.client.Key(key)).Result()
}

func decode(raw []byte, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Design record cache
// ─────────────────────────────────────────────────────────────────────────────

// DesignCache keeps persisted design records under design:<id>, so reads on a
// hot design skip Postgres.
type DesignCache struct {
	cache Cache
	ttl   time.Duration
}

func NewDesignCache(cache Cache, ttl time.Duration) *DesignCache {
	return &DesignCache{cache: cache, ttl: ttl}
}

func designKey(id customization.DesignID) string { return "design:" + string(id) }

// Get reports a miss as ok=false with a nil error.
func (d *DesignCache) Get(ctx context.Context, id customization.DesignID) (rec customization.DesignRecord, ok bool, err error) {
	switch err = d.cache.Get(ctx, designKey(id), &rec); err {
	case nil:
		return rec, true, nil
	case ErrCacheMiss:
		return customization.DesignRecord{}, false, nil
	default:
		return customization.DesignRecord{}, false, err
	}
}

// Put never replaces a cached record with an older version, so a reader that
// loaded before a mutation committed cannot overwrite the newer entry.
func (d *DesignCache) Put(ctx context.Context, rec customization.DesignRecord) error {
	_, err := d.cache.SetIfNewer(ctx, designKey(rec.ID), rec, rec.Version, d.ttl)
	return err
}

func (d *DesignCache) Invalidate(ctx context.Context, id customization.DesignID) error {
	return d.cache.Delete(ctx, designKey(id))
}

//Personal.AI order the ending
