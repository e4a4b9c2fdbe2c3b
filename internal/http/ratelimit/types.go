package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting and retry configuration for an upstream.
type Config struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second" json:"requestsPerSecond"`
	Burst             int           `mapstructure:"burst" json:"burst"`
	MaxRetries        int           `mapstructure:"max_retries" json:"maxRetries"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff" json:"initialBackoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff" json:"maxBackoff"`
}

// DefaultConfig returns the default rate limit configuration.
// Retries are off: a failed lookup degrades one offer, it is not worth the latency.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 20,
		Burst:             20,
		MaxRetries:        0,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
	}
}

// RateLimiter provides rate limiting using a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
	config  Config
}

// NewRateLimiter creates a new rate limiter with the given config.
// A non-positive rate disables limiting.
func NewRateLimiter(config Config) *RateLimiter {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		config:  config,
	}
}

// Config returns the current configuration.
func (r *RateLimiter) Config() Config {
	return r.config
}

// Throttle blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Throttle(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
