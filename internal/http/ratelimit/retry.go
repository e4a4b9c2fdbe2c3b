package ratelimit

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// FetchRetryError represents an error when all retry attempts are exhausted.
type FetchRetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *FetchRetryError) Error() string {
	msg := "failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *FetchRetryError) Unwrap() error {
	return e.LastError
}

// IsRetryableStatus checks if an HTTP status code is retryable.
// Retryable: 429, 5xx.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// CalculateBackoff returns exponential backoff with 0-25% jitter for a given attempt.
func CalculateBackoff(attempt int, config Config) time.Duration {
	exponential := float64(config.InitialBackoff) * math.Pow(2.0, float64(attempt))
	capped := math.Min(exponential, float64(config.MaxBackoff))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped + jitter)
}

// CalculateRateLimitBackoff calculates backoff for HTTP 429 responses.
// A Retry-After header in seconds wins; otherwise the base grows 3x per attempt.
func CalculateRateLimitBackoff(attempt int, config Config, retryAfter string) time.Duration {
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		jitter := time.Duration(rand.Int64N(int64(time.Second)))
		return time.Duration(seconds)*time.Second + jitter
	}

	exponential := float64(config.InitialBackoff) * math.Pow(3.0, float64(attempt))
	capped := math.Min(exponential, float64(config.MaxBackoff))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped + jitter)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
