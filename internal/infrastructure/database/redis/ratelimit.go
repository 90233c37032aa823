package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// tokenBucketScript refills KEYS[1] at ARGV[1] tokens/sec up to ARGV[2] and
// takes one token if available.  Returns {allowed, remaining, ms until the
// next token}.
var tokenBucketScript = redis.NewScript(`
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
	local tokens = tonumber(state[1])
	local ts = tonumber(state[2])
	if tokens == nil then
		tokens = burst
		ts = now
	end

	local elapsed = math.max(0, now - ts) / 1000
	tokens = math.min(burst, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
	redis.call("PEXPIRE", KEYS[1], math.ceil(burst / rate * 1000) + 1000)

	local wait = 0
	if tokens < 1 then
		wait = math.ceil((1 - tokens) / rate * 1000)
	end
	return {allowed, math.floor(tokens), wait}
`)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// TokenBucket is a rate limiter shared by every API replica.
type TokenBucket struct {
	client *Client
	rate   float64
	burst  int
	now    func() time.Time
}

// NewTokenBucket allows rate requests per second per key with bursts of up
// to burst.
func NewTokenBucket(client *Client, rate float64, burst int) *TokenBucket {
	return &TokenBucket{client: client, rate: rate, burst: burst, now: time.Now}
}

// Take consumes one token from key's bucket.
func (b *TokenBucket) Take(ctx context.Context, key string) (Decision, error) {
	res, err := tokenBucketScript.Run(ctx, b.client.GetUnderlyingClient(),
		[]string{b.client.Key("ratelimit", key)},
		b.rate, b.burst, b.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Decision{}, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit script failed")
	}
	return Decision{
		Allowed:    res[0] == 1,
		Limit:      b.burst,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

//Personal.AI order the ending
