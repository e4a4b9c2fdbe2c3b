package routing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
)

// countingResolver returns a fixed route and counts upstream calls.
type countingResolver struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (r *countingResolver) Resolve(ctx context.Context, _ geo.Coordinate, _ string, _ ranking.TravelMode) (ranking.Route, error) {
	r.calls.Add(1)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ranking.Route{}, ctx.Err()
		}
	}
	if r.err != nil {
		return ranking.Route{}, r.err
	}
	return ranking.Route{DistanceMeters: 1200, DurationSeconds: 300}, nil
}

func testCacheConfig() CacheConfig {
	cfg := DefaultCacheConfig()
	cfg.CleanupInterval = 0
	return cfg
}

func TestCachingResolverHit(t *testing.T) {
	upstream := &countingResolver{}
	cache := NewCachingResolver(upstream, testCacheConfig())
	defer cache.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		route, err := cache.Resolve(ctx, origin, "Ilica 1", ranking.ModeDriving)
		require.NoError(t, err)
		assert.Equal(t, 1200.0, route.DistanceMeters)
	}
	// Same address modulo case and whitespace.
	_, err := cache.Resolve(ctx, origin, "  ilica 1 ", ranking.ModeDriving)
	require.NoError(t, err)
	assert.Equal(t, int32(1), upstream.calls.Load())

	// A different mode is a different key.
	_, err = cache.Resolve(ctx, origin, "Ilica 1", ranking.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.calls.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestCachingResolverExpiry(t *testing.T) {
	upstream := &countingResolver{}
	cache := NewCachingResolver(upstream, testCacheConfig())
	defer cache.Close()

	now := time.Now()
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := cache.Resolve(ctx, origin, "Ilica 1", ranking.ModeDriving)
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = cache.Resolve(ctx, origin, "Ilica 1", ranking.ModeDriving)
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestCachingResolverDoesNotCacheFailures(t *testing.T) {
	upstream := &countingResolver{err: ErrNoRoute}
	cache := NewCachingResolver(upstream, testCacheConfig())
	defer cache.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := cache.Resolve(ctx, origin, "Atlantis", ranking.ModeDriving)
		assert.ErrorIs(t, err, ErrNoRoute)
	}
	assert.Equal(t, int32(2), upstream.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

// TestCachingResolverCollapsesConcurrentLookups verifies that concurrent
// lookups of the same route only reach the upstream once.
func TestCachingResolverCollapsesConcurrentLookups(t *testing.T) {
	upstream := &countingResolver{delay: 50 * time.Millisecond}
	cache := NewCachingResolver(upstream, testCacheConfig())
	defer cache.Close()

	const numRequests = 50
	var wg sync.WaitGroup
	errs := make(chan error, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Resolve(context.Background(), origin, "Ilica 1", ranking.ModeDriving)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), upstream.calls.Load())
}

// TestCachingResolverCallerCancellation verifies that one caller giving up
// does not fail the shared lookup for the others.
func TestCachingResolverCallerCancellation(t *testing.T) {
	upstream := &countingResolver{delay: 50 * time.Millisecond}
	cache := NewCachingResolver(upstream, testCacheConfig())
	defer cache.Close()

	impatient, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var patientErr, impatientErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, impatientErr = cache.Resolve(impatient, origin, "Ilica 1", ranking.ModeDriving)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(time.Millisecond)
		_, patientErr = cache.Resolve(context.Background(), origin, "Ilica 1", ranking.ModeDriving)
	}()
	wg.Wait()

	assert.True(t, errors.Is(impatientErr, context.DeadlineExceeded))
	assert.NoError(t, patientErr)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachingResolverEviction(t *testing.T) {
	cfg := testCacheConfig()
	cfg.MaxEntries = 2
	cache := NewCachingResolver(&countingResolver{}, cfg)
	defer cache.Close()

	ctx := context.Background()
	for _, addr := range []string{"a", "b", "c"} {
		_, err := cache.Resolve(ctx, origin, addr, ranking.ModeDriving)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestCachingResolverCleanupLoop(t *testing.T) {
	cfg := testCacheConfig()
	cfg.TTL = time.Millisecond
	cfg.CleanupInterval = 5 * time.Millisecond
	cache := NewCachingResolver(&countingResolver{}, cfg)
	defer cache.Close()

	_, err := cache.Resolve(context.Background(), origin, "Ilica 1", ranking.ModeDriving)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
}
