package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/database/redis"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, RateLimitInfo, error)
}

// RateLimitInfo is the bucket state after a decision.
type RateLimitInfo struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type RateLimitConfig struct {
	// Backend labels http_rate_limited_total.
	Backend string
	// KeyFunc identifies the caller; ClientIP when nil.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger
}

// DefaultRateLimitConfig keys by client address and leaves the probes and
// the scrape endpoint unthrottled.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Backend:   "memory",
		KeyFunc:   ClientIP,
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}
}

// ClientIP is the remote host without its port.  The RealIP middleware has
// already rewritten RemoteAddr from forwarding headers.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory token bucket
// ─────────────────────────────────────────────────────────────────────────────

type bucket struct {
	tokens float64
	seen   time.Time
}

// refill tops the bucket up for the time elapsed since it was last seen.
func (b *bucket) refill(now time.Time, perSecond, capacity float64) {
	b.tokens = min(capacity, b.tokens+now.Sub(b.seen).Seconds()*perSecond)
	b.seen = now
}

// TokenBucketLimiter keeps one bucket per key in process memory.  It suits a
// single replica; RedisLimiter shares buckets between replicas.
type TokenBucketLimiter struct {
	perSecond float64
	capacity  int
	idle      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

// NewTokenBucketLimiter refills rate tokens per second up to burstSize.  A
// positive cleanupInterval starts a sweeper dropping buckets idle that long.
func NewTokenBucketLimiter(rate float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		perSecond: rate,
		capacity:  burstSize,
		idle:      cleanupInterval,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		done:      make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.sweep()
	}
	return l
}

func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, RateLimitInfo, error) {
	now := l.now()
	capacity := float64(l.capacity)

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: capacity, seen: now}
		l.buckets[key] = b
	}
	b.refill(now, l.perSecond, capacity)

	info := RateLimitInfo{Limit: l.capacity}
	if b.tokens < 1 {
		info.RetryAfter = time.Duration((1 - b.tokens) / l.perSecond * float64(time.Second))
		return false, info, nil
	}
	b.tokens--
	info.Remaining = int(b.tokens)
	return true, info, nil
}

func (l *TokenBucketLimiter) sweep() {
	t := time.NewTicker(l.idle)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			l.cleanup()
		}
	}
}

func (l *TokenBucketLimiter) cleanup() {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the sweeper.  It is safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis token bucket
// ─────────────────────────────────────────────────────────────────────────────

// RedisLimiter shares one bucket per key across every API replica.
type RedisLimiter struct {
	bucket *redis.TokenBucket
}

func NewRedisLimiter(bucket *redis.TokenBucket) *RedisLimiter {
	return &RedisLimiter{bucket: bucket}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, RateLimitInfo, error) {
	d, err := l.bucket.Take(ctx, key)
	if err != nil {
		return true, RateLimitInfo{}, err
	}
	return d.Allowed, RateLimitInfo{Limit: d.Limit, Remaining: d.Remaining, RetryAfter: d.RetryAfter}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

var tooManyRequestsBody = []byte(`{"code":"` + string(errors.ErrCodeTooManyRequests) +
	`","message":"rate limit exceeded, please retry later"}`)

type throttle struct {
	limiter RateLimiter
	backend string
	key     func(*http.Request) string
	skip    map[string]struct{}
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

func newThrottle(limiter RateLimiter, cfg RateLimitConfig) *throttle {
	t := &throttle{
		limiter: limiter,
		backend: cfg.Backend,
		key:     cfg.KeyFunc,
		skip:    make(map[string]struct{}, len(cfg.SkipPaths)),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	for _, p := range cfg.SkipPaths {
		t.skip[p] = struct{}{}
	}
	if t.key == nil {
		t.key = ClientIP
	}
	if t.metrics == nil {
		t.metrics = prometheus.NewNoopAppMetrics()
	}
	if t.logger == nil {
		t.logger = logging.NewNopLogger()
	}
	return t
}

// retryAfterSeconds rounds up and never advertises less than one second.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(max(1, int(math.Ceil(d.Seconds()))))
}

func (t *throttle) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := t.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info, err := t.limiter.Allow(r.Context(), t.key(r))
		if err != nil {
			// Fail open: an unreachable limiter must not take the API down.
			t.logger.Warn("Rate limiter unavailable", logging.String("backend", t.backend), logging.Err(err))
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		t.metrics.RateLimitedTotal.WithLabelValues(t.backend).Inc()
		h.Set("Retry-After", retryAfterSeconds(info.RetryAfter))
		h.Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write(tooManyRequestsBody)
	})
}

// RateLimit returns middleware enforcing limiter.  Limiter errors let the
// request through.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	return newThrottle(limiter, cfg).wrap
}

// RateLimitMiddleware adapts RateLimit to RouterConfig.
type RateLimitMiddleware struct {
	t *throttle
}

func NewRateLimitMiddleware(limiter RateLimiter, cfg RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{t: newThrottle(limiter, cfg)}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return m.t.wrap(next)
}

//Personal.AI order the ending
