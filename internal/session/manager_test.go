package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
)

// fakeRanker echoes the constraint limit as the result count after an
// optional per-limit delay.
type fakeRanker struct {
	mu     sync.Mutex
	delays map[float64]time.Duration
	seen   []ranking.ShopperContext
}

func (f *fakeRanker) Rank(ctx context.Context, shopper ranking.ShopperContext, q ranking.Query) (*ranking.Result, error) {
	f.mu.Lock()
	f.seen = append(f.seen, shopper)
	delay := f.delays[shopper.Constraint.Limit]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	n := int(shopper.Constraint.Limit)
	products := make([]*ranking.Product, n)
	for i := range products {
		products[i] = &ranking.Product{SKU: q.Text}
	}
	return &ranking.Result{Status: ranking.StatusReady, Products: products, ResultsCount: n}, nil
}

func testConfig() Config {
	return Config{TTL: time.Minute, MaxSessions: 3}
}

func testShopper() ranking.ShopperContext {
	return ranking.ShopperContext{
		Constraint: ranking.TravelConstraint{Mode: ranking.ModeWalking, Metric: ranking.MetricDistance, Limit: 2},
	}
}

func waitForStatus(t *testing.T, m *Manager, id string, status ranking.Status) ranking.Result {
	t.Helper()
	var result ranking.Result
	require.Eventually(t, func() bool {
		r, err := m.Results(id)
		if err != nil {
			return false
		}
		result = r
		return r.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return result
}

func TestCreate(t *testing.T) {
	m := NewManager(&fakeRanker{}, testConfig())
	defer m.Close()

	view, err := m.Create(testShopper())
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, ranking.UnitKilometers, view.Shopper.Unit)
	assert.Nil(t, view.Shopper.Location)

	result, err := m.Results(view.ID)
	require.NoError(t, err)
	assert.Equal(t, ranking.StatusIdle, result.Status)

	bad := testShopper()
	bad.Constraint.Limit = 0
	_, err = m.Create(bad)
	var invalid ranking.ErrInvalidRequest
	assert.ErrorAs(t, err, &invalid)
}

func TestMutationsStartPasses(t *testing.T) {
	ranker := &fakeRanker{}
	m := NewManager(ranker, testConfig())
	defer m.Close()

	view, err := m.Create(testShopper())
	require.NoError(t, err)

	loc := &geo.Coordinate{Latitude: 45.8, Longitude: 15.97}
	_, err = m.SetLocation(view.ID, loc)
	require.NoError(t, err)
	result := waitForStatus(t, m, view.ID, ranking.StatusReady)
	assert.Equal(t, 2, result.ResultsCount)

	// The session owns its copy of the location.
	loc.Latitude = 0
	got, err := m.Get(view.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.8, got.Shopper.Location.Latitude)

	_, err = m.SetConstraint(view.ID, ranking.TravelConstraint{Mode: ranking.ModeDriving, Metric: ranking.MetricTime, Limit: 5})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		r, _ := m.Results(view.ID)
		return r.ResultsCount == 5
	}, 2*time.Second, 5*time.Millisecond)

	_, err = m.Refresh(view.ID, ranking.Query{Text: "milk", SearchType: ranking.SearchStore})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		r, _ := m.Results(view.ID)
		return len(r.Products) > 0 && r.Products[0].SKU == "milk"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestInvalidMutations(t *testing.T) {
	m := NewManager(&fakeRanker{}, testConfig())
	defer m.Close()

	view, err := m.Create(testShopper())
	require.NoError(t, err)

	_, err = m.SetLocation(view.ID, &geo.Coordinate{Latitude: 91})
	assert.Error(t, err)
	_, err = m.SetConstraint(view.ID, ranking.TravelConstraint{Mode: "jetpack", Metric: ranking.MetricTime, Limit: 1})
	assert.Error(t, err)
	_, err = m.Refresh("missing", ranking.Query{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLastWriteWins(t *testing.T) {
	ranker := &fakeRanker{delays: map[float64]time.Duration{7: 200 * time.Millisecond}}
	m := NewManager(ranker, testConfig())
	defer m.Close()

	view, err := m.Create(testShopper())
	require.NoError(t, err)

	// Slow pass first, fast pass second: the slow one must never land.
	_, err = m.SetConstraint(view.ID, ranking.TravelConstraint{Mode: ranking.ModeWalking, Metric: ranking.MetricDistance, Limit: 7})
	require.NoError(t, err)
	_, err = m.SetConstraint(view.ID, ranking.TravelConstraint{Mode: ranking.ModeWalking, Metric: ranking.MetricDistance, Limit: 3})
	require.NoError(t, err)

	waitForStatus(t, m, view.ID, ranking.StatusReady)
	time.Sleep(300 * time.Millisecond)

	result, err := m.Results(view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ResultsCount)
}

func TestExpiry(t *testing.T) {
	m := NewManager(&fakeRanker{}, testConfig())
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }

	view, err := m.Create(testShopper())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), view.ExpiresAt)

	now = now.Add(30 * time.Second)
	_, err = m.Get(view.ID)
	require.NoError(t, err)

	now = now.Add(61 * time.Second)
	_, err = m.Get(view.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	m.expire()
	assert.Equal(t, 0, m.Len())
}

func TestMaxSessionsAndDelete(t *testing.T) {
	m := NewManager(&fakeRanker{}, testConfig())
	defer m.Close()

	var ids []string
	for i := 0; i < 3; i++ {
		view, err := m.Create(testShopper())
		require.NoError(t, err)
		ids = append(ids, view.ID)
	}

	_, err := m.Create(testShopper())
	assert.ErrorIs(t, err, ErrTooManySessions)

	require.NoError(t, m.Delete(ids[0]))
	assert.ErrorIs(t, m.Delete(ids[0]), ErrNotFound)
	_, err = m.Create(testShopper())
	assert.NoError(t, err)
}
