package routing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("routing circuit breaker is open")

// CircuitBreakerState represents the state of the circuit breaker.
type CircuitBreakerState int

const (
	// CircuitClosed allows requests to pass through.
	CircuitClosed CircuitBreakerState = iota

	// CircuitOpen rejects requests immediately.
	CircuitOpen

	// CircuitHalfOpen allows a few probe requests to check if the upstream has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit breaker state.
func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening the circuit.
	MaxFailures int `mapstructure:"max_failures"`

	// ResetTimeout is how long to wait before attempting a reset (half-open state).
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`

	// HalfOpenMaxCalls is the number of successful probes needed to close again.
	HalfOpenMaxCalls int `mapstructure:"half_open_max_calls"`
}

// DefaultCircuitBreakerConfig returns the default circuit breaker configuration.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:      10,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// CircuitBreaker rejects calls once MaxFailures consecutive upstream failures
// were recorded, and probes the upstream again after ResetTimeout.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           CircuitBreakerState
	failureCount    int
	successCount    int // used in half-open state
	inflightProbes  int
	lastFailureTime time.Time
	config          *CircuitBreakerConfig
	logger          zerolog.Logger
	name            string
	now             func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(name string, config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	breakerState.WithLabelValues(name).Set(float64(CircuitClosed))

	return &CircuitBreaker{
		state:  CircuitClosed,
		config: config,
		logger: log.With().Str("component", "circuit_breaker").Str("circuit_breaker", name).Logger(),
		name:   name,
		now:    time.Now,
	}
}

// Allow returns true if the request should be allowed through the circuit breaker.
// Every allowed call must be followed by RecordSuccess, RecordFailure or RecordCancelled.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.config.ResetTimeout {
			return false
		}
		cb.transitionTo(CircuitHalfOpen)
		cb.logger.Info().Msg("Circuit breaker transitioning to half-open")
		cb.inflightProbes++
		return true

	case CircuitHalfOpen:
		if cb.successCount+cb.inflightProbes >= cb.config.HalfOpenMaxCalls {
			return false
		}
		cb.inflightProbes++
		return true

	default:
		return false
	}
}

// RecordSuccess records a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount = 0

	case CircuitHalfOpen:
		cb.releaseProbe()
		cb.successCount++
		if cb.successCount >= cb.config.HalfOpenMaxCalls {
			cb.transitionTo(CircuitClosed)
			cb.logger.Info().
				Int("success_count", cb.successCount).
				Msg("Circuit breaker closing after successful recovery")
			cb.successCount = 0
			cb.failureCount = 0
		}
	}
}

// RecordFailure records a failed operation.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()

	cb.logger.Debug().
		Err(err).
		Int("failure_count", cb.failureCount).
		Msg("Circuit breaker recording failure")

	switch cb.state {
	case CircuitClosed:
		if cb.failureCount >= cb.config.MaxFailures {
			cb.transitionTo(CircuitOpen)
			cb.logger.Warn().
				Int("failure_count", cb.failureCount).
				Dur("reset_timeout", cb.config.ResetTimeout).
				Msg("Circuit breaker opening after max failures")
		}

	case CircuitHalfOpen:
		cb.releaseProbe()
		cb.transitionTo(CircuitOpen)
		cb.logger.Warn().Msg("Circuit breaker re-opening after failure in half-open state")
		cb.successCount = 0
	}
}

// RecordCancelled releases an allowed call that ended without an upstream verdict.
func (cb *CircuitBreaker) RecordCancelled() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.releaseProbe()
	}
}

func (cb *CircuitBreaker) releaseProbe() {
	if cb.inflightProbes > 0 {
		cb.inflightProbes--
	}
}

// transitionTo transitions the circuit breaker to a new state.
func (cb *CircuitBreaker) transitionTo(newState CircuitBreakerState) {
	cb.state = newState
	if newState != CircuitHalfOpen {
		cb.inflightProbes = 0
	}
	breakerState.WithLabelValues(cb.name).Set(float64(newState))
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount returns the current failure count.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transitionTo(CircuitClosed)
	cb.failureCount = 0
	cb.successCount = 0

	cb.logger.Info().Msg("Circuit breaker manually reset to closed state")
}

// BreakerResolver guards a resolver with a circuit breaker.
type BreakerResolver struct {
	next    ranking.Resolver
	breaker *CircuitBreaker
}

// NewBreakerResolver wraps next with breaker.
func NewBreakerResolver(next ranking.Resolver, breaker *CircuitBreaker) *BreakerResolver {
	return &BreakerResolver{next: next, breaker: breaker}
}

// Breaker returns the underlying circuit breaker.
func (r *BreakerResolver) Breaker() *CircuitBreaker {
	return r.breaker
}

// Resolve implements ranking.Resolver.
// A missing route is a healthy answer and does not count as a failure, and
// neither does the caller giving up.
func (r *BreakerResolver) Resolve(ctx context.Context, origin geo.Coordinate, destination string, mode ranking.TravelMode) (ranking.Route, error) {
	if !r.breaker.Allow() {
		breakerRejections.WithLabelValues(r.breaker.name).Inc()
		return ranking.Route{}, ErrCircuitOpen
	}

	route, err := r.next.Resolve(ctx, origin, destination, mode)
	switch {
	case err == nil, errors.Is(err, ErrNoRoute):
		r.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		r.breaker.RecordCancelled()
	default:
		r.breaker.RecordFailure(err)
	}
	return route, err
}
