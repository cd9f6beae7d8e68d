package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitIPPrefix = keyPrefix + "ratelimit:ip:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes one token atomically.
// Time is in milliseconds so sub-second refill is not lost.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in ms
	local ttl = tonumber(ARGV[4])       -- key TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'updated_ms')
	local tokens = tonumber(data[1]) or burst
	local updated = tonumber(data[2]) or now

	local elapsed = math.max(0, now - updated) / 1000
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_ms = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_ms = math.ceil((1 - tokens) / rate * 1000)
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'updated_ms', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_ms, math.floor(tokens)}
`)

// IPRateLimiter throttles clients by IP address with a Redis token bucket.
type IPRateLimiter struct {
	cache *Cache
	rate  float64
	burst int
	ttl   int
}

// NewIPRateLimiter returns a limiter allowing rps requests per second
// with bursts of up to burst requests.
func NewIPRateLimiter(c *Cache, rps, burst int) (*IPRateLimiter, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rate limit needs positive rps and burst, got %d and %d", rps, burst)
	}
	return &IPRateLimiter{
		cache: c,
		rate:  float64(rps),
		burst: burst,
		ttl:   bucketTTL(float64(rps), burst),
	}, nil
}

// Allow consumes one token for ip.
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (*RateLimitResult, error) {
	key := rateLimitIPPrefix + hashIP(ip)

	result, err := tokenBucketScript.Run(ctx, l.cache.client,
		[]string{key},
		l.rate, l.burst, time.Now().UnixMilli(), l.ttl,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Limit:      l.burst,
		Remaining:  result[2],
		RetryAfter: time.Duration(result[1]) * time.Millisecond,
	}, nil
}

// bucketTTL is how long an idle bucket takes to refill, plus a second.
func bucketTTL(rate float64, burst int) int {
	return int(math.Ceil(float64(burst)/rate)) + 1
}

// hashIP creates a truncated SHA256 hash of an IP address.
// Raw addresses are never written to Redis.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
