package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitIPPrefix   = "ratelimit:ip:"
	rateLimitUserPrefix = "ratelimit:user:"
	rateLimitTTL        = 120 * time.Second
)

// Limit describes a token bucket.
type Limit struct {
	PerMinute int
	Burst     int
}

// Unlimited reports whether the limit disables checking.
func (l Limit) Unlimited() bool {
	return l.PerMinute <= 0
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckIPRateLimit checks and updates the bucket of an IP for a route group.
// IP is hashed to avoid storing raw IP addresses.
func (c *Cache) CheckIPRateLimit(ctx context.Context, group, ip string, limit Limit) (*RateLimitResult, error) {
	return c.checkRateLimit(ctx, ipKey(group, ip), limit)
}

// CheckUserRateLimit checks and updates the bucket of an authenticated user.
func (c *Cache) CheckUserRateLimit(ctx context.Context, group, userID string, limit Limit) (*RateLimitResult, error) {
	return c.checkRateLimit(ctx, userKey(group, userID), limit)
}

// checkRateLimit is the common rate limit implementation.
// On a Redis failure the error is returned and callers fail open.
func (c *Cache) checkRateLimit(ctx context.Context, key string, limit Limit) (*RateLimitResult, error) {
	if limit.Unlimited() {
		return allowAll(limit), nil
	}

	rate := float64(limit.PerMinute) / 60.0
	now := time.Now().Unix()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		rate, limit.Burst, now, int(rateLimitTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return allowAll(limit), fmt.Errorf("run token bucket script: %w", err)
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Limit:      limit.PerMinute,
		Remaining:  result[2],
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

func allowAll(limit Limit) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Limit:     limit.PerMinute,
		Remaining: int64(limit.Burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}

func ipKey(group, ip string) string {
	return rateLimitIPPrefix + group + ":" + hashIP(ip)
}

func userKey(group, userID string) string {
	return rateLimitUserPrefix + group + ":" + userID
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
