package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		assert.True(t, IsRetryableStatus(status), "status %d", status)
	}
	for _, status := range []int{200, 400, 401, 403, 404} {
		assert.False(t, IsRetryableStatus(status), "status %d", status)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}

	d := CalculateBackoff(0, cfg)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.LessOrEqual(t, d, 125*time.Millisecond)

	d = CalculateBackoff(10, cfg)
	assert.GreaterOrEqual(t, d, time.Second)
	assert.LessOrEqual(t, d, 1250*time.Millisecond)
}

func TestCalculateRateLimitBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 10 * time.Second}

	d := CalculateRateLimitBackoff(0, cfg, "2")
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.Less(t, d, 3*time.Second)

	d = CalculateRateLimitBackoff(1, cfg, "")
	assert.GreaterOrEqual(t, d, 300*time.Millisecond)
	assert.LessOrEqual(t, d, 375*time.Millisecond)
}
