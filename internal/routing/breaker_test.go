package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/offer-service/internal/ranking"
)

func testBreaker(t *testing.T) (*CircuitBreaker, *time.Time) {
	t.Helper()
	cb := NewCircuitBreaker(t.Name(), &CircuitBreakerConfig{
		MaxFailures:      3,
		ResetTimeout:     time.Minute,
		HalfOpenMaxCalls: 2,
	})
	now := time.Now()
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb, _ := testBreaker(t)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		require.True(t, cb.Allow())
		cb.RecordFailure(boom)
	}
	assert.Equal(t, CircuitClosed, cb.State())

	require.True(t, cb.Allow())
	cb.RecordFailure(boom)
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb, _ := testBreaker(t)

	cb.RecordFailure(errors.New("boom"))
	cb.RecordFailure(errors.New("boom"))
	cb.RecordSuccess()
	assert.Equal(t, 0, cb.FailureCount())
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb, now := testBreaker(t)
	for i := 0; i < 3; i++ {
		cb.RecordFailure(errors.New("boom"))
	}
	require.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(2 * time.Minute)

	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.True(t, cb.Allow())
	// Probe budget exhausted until the in-flight probes report back.
	assert.False(t, cb.Allow())

	cb.RecordSuccess()
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, now := testBreaker(t)
	for i := 0; i < 3; i++ {
		cb.RecordFailure(errors.New("boom"))
	}

	*now = now.Add(2 * time.Minute)
	require.True(t, cb.Allow())
	cb.RecordFailure(errors.New("still down"))

	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreakerReset(t *testing.T) {
	cb, _ := testBreaker(t)
	for i := 0; i < 3; i++ {
		cb.RecordFailure(errors.New("boom"))
	}
	cb.Reset()

	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())
}

func TestBreakerResolver(t *testing.T) {
	cb, _ := testBreaker(t)
	upstream := &countingResolver{err: errors.New("upstream down")}
	resolver := NewBreakerResolver(upstream, cb)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(ctx, origin, "Ilica 1", ranking.ModeDriving)
		assert.Error(t, err)
	}

	_, err := resolver.Resolve(ctx, origin, "Ilica 1", ranking.ModeDriving)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), upstream.calls.Load())
	assert.Equal(t, CircuitOpen, resolver.Breaker().State())
}

func TestBreakerResolverNoRouteIsHealthy(t *testing.T) {
	cb, _ := testBreaker(t)
	resolver := NewBreakerResolver(&countingResolver{err: ErrNoRoute}, cb)

	for i := 0; i < 5; i++ {
		_, err := resolver.Resolve(context.Background(), origin, "Atlantis", ranking.ModeDriving)
		assert.ErrorIs(t, err, ErrNoRoute)
	}
	assert.Equal(t, CircuitClosed, cb.State())
}
