package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  local refill = (delta / 1000) * rate
  tokens = math.min(burst, tokens + refill)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

-- Return: allowed, remaining_tokens, ts (milliseconds)
return {allowed, tokens, ts}
`

// TokenBucket is a redis-backed bucket shared by every replica; refill
// timing uses the redis server clock.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

var ErrNotConfigured = errors.New("rate limiter not configured")

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
	}
}

func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	if t == nil || t.client == nil {
		return &RateLimitResult{Allowed: false}, ErrNotConfigured
	}
	if key == "" {
		return &RateLimitResult{Allowed: false}, errors.New("rate limiter key is empty")
	}
	if rate <= 0 {
		return &RateLimitResult{Allowed: false}, errors.New("rate limiter rate must be positive")
	}
	if burst <= 0 {
		return &RateLimitResult{Allowed: false}, errors.New("rate limiter burst must be positive")
	}

	ttl := defaultBucketTTL(rate, burst)
	res, err := t.script.Run(
		ctx,
		t.client,
		[]string{key},
		rate,
		burst,
		int64(ttl/time.Millisecond),
	).Slice()
	if err != nil {
		return &RateLimitResult{Allowed: false}, err
	}

	if len(res) < 3 {
		return &RateLimitResult{Allowed: false}, errors.New("invalid rate limit script response")
	}

	// Lua numbers come back as integers, so remaining is whole tokens.
	allowed := castToInt(res[0]) == 1
	remainingTokens := castToFloat(res[1])
	ts := castToInt(res[2])

	retryAfter := time.Duration(0)
	if !allowed {
		if needed := 1.0 - remainingTokens; needed > 0 {
			retryAfter = time.Duration(needed / rate * float64(time.Second))
		}
	}

	return &RateLimitResult{
		Allowed:    allowed,
		Limit:      burst,
		Remaining:  int(remainingTokens),
		ResetTime:  time.UnixMilli(ts).Add(retryAfter),
		RetryAfter: retryAfter,
	}, nil
}

func defaultBucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

func castToFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
