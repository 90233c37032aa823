package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeDesignLocked, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeInvalidState, "lock not held by this owner")
)

const designReleaseTimeout = 2 * time.Second

// DistributedLock is a single-owner mutex held in Redis.  Ownership is a
// random token, so only the holder can extend or release it.
type DistributedLock interface {
	Lock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) (bool, error)
	TTL(ctx context.Context) (time.Duration, error)
}

// leaseSpec is how long a lock lives and how hard Lock tries to take it.
type leaseSpec struct {
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	renew    bool
}

type LockOption func(*leaseSpec)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(s *leaseSpec) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithRetryDelay(d time.Duration) LockOption { return func(s *leaseSpec) { s.backoff = d } }

// WithRetryCount bounds how many times Lock tries; at least once.
func WithRetryCount(n int) LockOption {
	return func(s *leaseSpec) {
		if n < 1 {
			n = 1
		}
		s.attempts = n
	}
}

// WithWatchdog keeps a held lock alive by renewing it every third of its TTL
// until Unlock.
func WithWatchdog(enabled bool) LockOption { return func(s *leaseSpec) { s.renew = enabled } }

// LockFactory mints mutexes under the client's "lock" namespace.
type LockFactory struct {
	client   *Client
	log      logging.Logger
	defaults []LockOption
}

func NewLockFactory(client *Client, log logging.Logger, defaults ...LockOption) *LockFactory {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &LockFactory{client: client, log: log, defaults: defaults}
}

func (f *LockFactory) NewMutex(name string, opts ...LockOption) DistributedLock {
	spec := leaseSpec{ttl: 10 * time.Second, attempts: 20, backoff: 50 * time.Millisecond}
	for _, o := range append(append([]LockOption{}, f.defaults...), opts...) {
		o(&spec)
	}
	return &lease{
		rdb:   f.client.GetUnderlyingClient(),
		key:   f.client.Key("lock", name),
		token: uuid.NewString(),
		spec:  spec,
		log:   f.log.With(logging.String("lock", name)),
	}
}

// AcquireDesign serialises writers of one design across API replicas.  The
// release func may be called more than once; a failed release is logged.
func (f *LockFactory) AcquireDesign(ctx context.Context, id customization.DesignID) (release func(), err error) {
	m := f.NewMutex("design:"+string(id), WithWatchdog(true))
	if err := m.Lock(ctx); err != nil {
		if errors.IsCode(err, errors.ErrCodeDesignLocked) {
			return nil, errors.New(errors.ErrCodeDesignLocked, "design is locked by another request").
				WithDetail("id=" + string(id))
		}
		return nil, err
	}
	return func() {
		// Runs after the request, whose context may be gone.
		ctx, cancel := context.WithTimeout(context.Background(), designReleaseTimeout)
		defer cancel()
		if err := m.Unlock(ctx); err != nil {
			f.log.Warn("Failed to release design lock", logging.DesignID(string(id)), logging.Err(err))
		}
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Token-guarded lease
// ─────────────────────────────────────────────────────────────────────────────

// ownerScript acts on KEYS[1] only while it still holds the caller's token.
// ARGV[2] is "release" or "renew"; ARGV[3] is the renewal in milliseconds.
var ownerScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
if ARGV[2] == "release" then
	return redis.call("DEL", KEYS[1])
end
return redis.call("PEXPIRE", KEYS[1], ARGV[3])
`)

type lease struct {
	rdb   redis.UniversalClient
	key   string
	token string
	spec  leaseSpec
	log   logging.Logger

	mu        sync.Mutex
	stopRenew func()
}

func (l *lease) Lock(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		ok, err := l.TryLock(ctx)
		if err != nil || ok {
			return err
		}
		if attempt >= l.spec.attempts {
			return ErrLockNotAcquired
		}
		t := time.NewTimer(l.spec.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *lease) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, l.token, l.spec.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	if ok && l.spec.renew {
		l.keepAlive()
	}
	return ok, nil
}

func (l *lease) Unlock(ctx context.Context) error {
	l.haltRenewal()
	n, err := ownerScript.Run(ctx, l.rdb, []string{l.key}, l.token, "release").Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func (l *lease) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := ownerScript.Run(ctx, l.rdb, []string{l.key}, l.token, "renew", ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to extend lock")
	}
	return n == 1, nil
}

func (l *lease) TTL(ctx context.Context) (time.Duration, error) {
	return l.rdb.PTTL(ctx, l.key).Result()
}

// keepAlive renews the lease until haltRenewal or until the lease is lost.
func (l *lease) keepAlive() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.mu.Lock()
	l.stopRenew = func() { cancel(); <-done }
	l.mu.Unlock()

	go func() {
		defer close(done)
		tick := time.NewTicker(l.spec.ttl / 3)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
			held, err := l.Extend(ctx, l.spec.ttl)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				l.log.Error("Watchdog failed to extend lock", logging.Err(err))
				return
			case !held:
				l.log.Warn("Watchdog lost lock")
				return
			}
		}
	}()
}

func (l *lease) haltRenewal() {
	l.mu.Lock()
	stop := l.stopRenew
	l.stopRenew = nil
	l.mu.Unlock()
	if stop != nil {
		stop()
	}
}

//Personal.AI order the ending
