package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/cache"
	"github.com/blogback/blogback/internal/metrics"
)

// RateLimiter checks token buckets. *cache.Cache implements it.
type RateLimiter interface {
	CheckIPRateLimit(ctx context.Context, group, ip string, limit cache.Limit) (*cache.RateLimitResult, error)
	CheckUserRateLimit(ctx context.Context, group, userID string, limit cache.Limit) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for one rate limited route group.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Metrics metrics.Recorder
	Enabled bool
	Group   string
	Limit   cache.Limit
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Used for /login and /register to slow down credential stuffing.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, func(r *http.Request) (string, bool) {
		return getClientIP(r), true
	}, cfg.checkIP)
}

// RateLimitUser returns middleware that rate limits requests per authenticated user.
// Must be applied after Auth middleware.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, func(r *http.Request) (string, bool) {
		userID := auth.UserIDFromContext(r.Context())
		return userID, userID != ""
	}, cfg.checkUser)
}

func (cfg RateLimitConfig) checkIP(ctx context.Context, subject string) (*cache.RateLimitResult, error) {
	return cfg.Limiter.CheckIPRateLimit(ctx, cfg.Group, subject, cfg.Limit)
}

func (cfg RateLimitConfig) checkUser(ctx context.Context, subject string) (*cache.RateLimitResult, error) {
	return cfg.Limiter.CheckUserRateLimit(ctx, cfg.Group, subject, cfg.Limit)
}

func rateLimit(
	cfg RateLimitConfig,
	subjectOf func(*http.Request) (string, bool),
	check func(context.Context, string) (*cache.RateLimitResult, error),
) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil || cfg.Limit.Unlimited() {
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := subjectOf(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			result, err := check(r.Context(), subject)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("group", cfg.Group),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result.Limit, result.Remaining, result.ResetAt)

			if !result.Allowed {
				cfg.Metrics.IncRateLimited(cfg.Group)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("group", cfg.Group),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	writeError(w, http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many attempts. Retry after %d seconds.", int(retryAfter.Seconds())))
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// ignored here; chi's RealIP middleware rewrites RemoteAddr from them when
// the deployment trusts its proxy.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
