package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func get(router *gin.Engine, header map[string]string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:4000"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestAPIKeyAuth(t *testing.T) {
	router := newRouter(APIKeyAuth("s3cret"))

	assert.Equal(t, http.StatusUnauthorized, get(router, nil))
	assert.Equal(t, http.StatusUnauthorized, get(router, map[string]string{APIKeyHeader: "s3cre"}))
	assert.Equal(t, http.StatusOK, get(router, map[string]string{APIKeyHeader: "s3cret"}))
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	router := newRouter(APIKeyAuth(""))
	assert.Equal(t, http.StatusOK, get(router, nil))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	router := newRouter(RateLimitMiddleware(limiter))

	assert.Equal(t, http.StatusOK, get(router, nil))
	assert.Equal(t, http.StatusOK, get(router, nil))
	assert.Equal(t, http.StatusTooManyRequests, get(router, nil))
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimiterConfig{})
	router := newRouter(RateLimitMiddleware(limiter))

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, get(router, nil))
	}
	assert.Equal(t, 0, limiter.Len())
}

func TestCleanupOldLimiters(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTimeout: time.Minute})
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("10.0.0.1")
	now = now.Add(45 * time.Second)
	limiter.GetLimiter("10.0.0.2")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, limiter.CleanupOldLimiters())
	assert.Equal(t, 1, limiter.Len())
}
