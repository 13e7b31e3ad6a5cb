package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLimiter(rpm, burst int) *Limiter {
	l := New(Config{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Hour, // keep the cleanup loop idle during tests
	})
	return l
}

func TestAllowWithinBurst(t *testing.T) {
	l := newTestLimiter(60, 5)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d within burst should pass", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "request beyond burst should be rejected")
}

func TestAllowIsolatesClients(t *testing.T) {
	l := newTestLimiter(60, 2)
	defer l.Stop()

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	// A different client has its own bucket.
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestTokensRefillOverTime(t *testing.T) {
	l := newTestLimiter(6000, 2) // 100 tokens/sec so the test stays fast
	defer l.Stop()

	require.True(t, l.Allow("c"))
	require.True(t, l.Allow("c"))
	require.False(t, l.Allow("c"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, l.Allow("c"), "bucket should refill after waiting")
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := newTestLimiter(60, 1)
	defer l.Stop()

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")
}

func TestNewAppliesDefaults(t *testing.T) {
	l := New(Config{})
	defer l.Stop()

	assert.Equal(t, DefaultConfig().RequestsPerMinute, l.cfg.RequestsPerMinute)
	assert.Equal(t, DefaultConfig().BurstSize, l.cfg.BurstSize)
}
