package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/electroworld/auth-service/internal/domain"
	"github.com/electroworld/auth-service/internal/infrastructure/redis"
	"github.com/electroworld/auth-service/internal/logger"
)

type RateLimiter interface {
	AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error)
	Enabled() bool
}

// FixedWindowConfig defines the configuration for a fixed-window rate limit.
type FixedWindowConfig struct {
	RouteKey string
	Limit    int
	Window   time.Duration
}

// RateLimit enforces cfg per client. With a Redis-backed limiter the window
// is shared across instances; without one it falls back to an in-process
// httprate counter. A Redis error at request time lets the request through.
func RateLimit(limiter RateLimiter, cfg FixedWindowConfig, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.RouteKey == "" {
		cfg.RouteKey = "unknown"
	}
	if cfg.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	if limiter == nil || !limiter.Enabled() {
		return httprate.Limit(
			cfg.Limit,
			cfg.Window,
			httprate.WithKeyFuncs(func(r *http.Request) (string, error) { return userOrIP(r), nil }),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				rateLimitedTotal.WithLabelValues(cfg.RouteKey, "memory").Inc()
				writeErr(w, r, domain.ErrRateLimited(cfg.RouteKey))
			}),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := windowBucket(time.Now(), cfg.Window)
			key := fmt.Sprintf("rl:%s:%s:%d", cfg.RouteKey, userOrIP(r), bucket)

			dec, err := limiter.AllowFixedWindow(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("route", cfg.RouteKey).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

			if !dec.Allowed {
				if dec.RetryAfter > 0 {
					secs := int((dec.RetryAfter + time.Second - 1) / time.Second)
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				rateLimitedTotal.WithLabelValues(cfg.RouteKey, "redis").Inc()
				writeErr(w, r, domain.ErrRateLimited(cfg.RouteKey))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func windowBucket(now time.Time, window time.Duration) int64 {
	sec := int64(window.Seconds())
	if sec <= 0 {
		sec = 60
	}
	return now.Unix() / sec
}

// userOrIP prefers the authenticated user id; otherwise falls back to client IP.
func userOrIP(r *http.Request) string {
	if u, ok := UserFromContext(r.Context()); ok {
		return "u:" + u.ID
	}
	return "ip:" + clientIP(r)
}

// clientIP relies on RemoteAddr; chi's RealIP middleware rewrites it when
// running behind a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
