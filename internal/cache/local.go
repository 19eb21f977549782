package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localMaxBuckets bounds memory; idle buckets are pruned once it is reached.
const localMaxBuckets = 10000

// LocalLimiter keeps token buckets in process memory. It is used when no
// Redis backend is configured and is only accurate for a single instance.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	now     func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates an empty in-process limiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*localBucket),
		now:     time.Now,
	}
}

// CheckIPRateLimit checks and updates the bucket of an IP for a route group.
func (l *LocalLimiter) CheckIPRateLimit(_ context.Context, group, ip string, limit Limit) (*RateLimitResult, error) {
	return l.check(ipKey(group, ip), limit), nil
}

// CheckUserRateLimit checks and updates the bucket of an authenticated user.
func (l *LocalLimiter) CheckUserRateLimit(_ context.Context, group, userID string, limit Limit) (*RateLimitResult, error) {
	return l.check(userKey(group, userID), limit), nil
}

func (l *LocalLimiter) check(key string, limit Limit) *RateLimitResult {
	if limit.Unlimited() {
		return allowAll(limit)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= localMaxBuckets {
			l.prune(now)
		}
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(float64(limit.PerMinute)/60.0), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	perToken := time.Duration(float64(time.Minute) / float64(limit.PerMinute))
	result := &RateLimitResult{
		Limit:   limit.PerMinute,
		ResetAt: now.Add(perToken),
	}

	if b.limiter.AllowN(now, 1) {
		result.Allowed = true
		result.Remaining = int64(math.Max(0, math.Floor(b.limiter.TokensAt(now))))
		return result
	}

	missing := 1 - b.limiter.TokensAt(now)
	result.RetryAfter = time.Duration(math.Ceil(missing*perToken.Seconds())) * time.Second
	return result
}

// prune drops buckets idle for longer than the Redis key TTL.
func (l *LocalLimiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > rateLimitTTL {
			delete(l.buckets, key)
		}
	}
}
