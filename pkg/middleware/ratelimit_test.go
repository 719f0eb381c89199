package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perWindow int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	limiter := NewRateLimiter(client, &RateLimitConfig{
		RequestsPerWindow: perWindow,
		WindowDuration:    time.Minute,
	}, "test")
	return limiter, mr
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login-register", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login-register", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too many authentication attempts")
}

func TestRateLimiterIsPerClient(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"10.0.0.1:5000", "10.0.0.2:5000"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login-register", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "first request from %s should pass", addr)
	}
}

func TestRateLimiterWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)

	allowed, err := limiter.Allow(t.Context(), "10.0.0.3")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(t.Context(), "10.0.0.3")
	require.NoError(t, err)
	require.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	allowed, err = limiter.Allow(t.Context(), "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, allowed, "a new window must open after expiry")
}

func TestRateLimiterFailsOpenOnRedisOutage(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	mr.Close()

	allowed, err := limiter.Allow(t.Context(), "10.0.0.4")
	assert.True(t, allowed, "redis outage must not lock clients out")
	assert.Error(t, err)
}
