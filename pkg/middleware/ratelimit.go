package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wildpark/wildpark/pkg/httputil"
)

// RateLimitConfig controls the fixed window applied to auth endpoints.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// DefaultAuthRateLimitConfig allows 30 exchanges per client per minute.
func DefaultAuthRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 30,
		WindowDuration:    time.Minute,
	}
}

// RateLimiter implements a Redis-backed fixed window counter so limits are
// shared across instances.
type RateLimiter struct {
	redis  *redis.Client
	config *RateLimitConfig
	prefix string
}

// NewRateLimiter creates a Redis-backed limiter.
func NewRateLimiter(redisClient *redis.Client, config *RateLimitConfig, prefix string) *RateLimiter {
	if config == nil {
		config = DefaultAuthRateLimitConfig()
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RateLimiter{redis: redisClient, config: config, prefix: prefix}
}

// Allow checks and counts one request for key.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open on Redis errors so an outage cannot lock everyone out.
		return true, fmt.Errorf("redis error: %w", err)
	}
	return incr.Val() <= int64(rl.config.RequestsPerWindow), nil
}

// Reset clears the window for a key (tests and admin use).
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.redis.Del(ctx, fmt.Sprintf("%s:%s", rl.prefix, key)).Err()
}

// Handler rejects over-limit clients with 429. The identity bridge treats
// that as a retryable failure, so clients back off instead of erroring out.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, _ := rl.Allow(r.Context(), clientKey(r))
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.config.WindowDuration.Seconds())))
			httputil.WriteTooManyRequests(w, r, "too many authentication attempts, try again shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
