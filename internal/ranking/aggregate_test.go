package ranking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver resolves addresses from a fixed table.
type stubResolver struct {
	mu       sync.Mutex
	routes   map[string]Route
	errs     map[string]error
	delay    time.Duration
	calls    int
	inflight atomic.Int32
	peak     atomic.Int32
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		routes: make(map[string]Route),
		errs:   make(map[string]error),
	}
}

func (s *stubResolver) set(address string, meters, seconds float64) {
	s.routes[address] = Route{DistanceMeters: meters, DurationSeconds: seconds}
}

func (s *stubResolver) Resolve(ctx context.Context, _ geo.Coordinate, destination string, _ TravelMode) (Route, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls++
	route, ok := s.routes[destination]
	err := s.errs[destination]
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Route{}, ctx.Err()
		}
	}
	if err != nil {
		return Route{}, err
	}
	if !ok {
		return Route{}, errors.New("no route")
	}
	return route, nil
}

func (s *stubResolver) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sampleSnapshot() *CatalogSnapshot {
	return &CatalogSnapshot{
		Products: []ProductRow{
			{SKU: "milk", Name: "Milk", CategoryID: "dairy"},
			{SKU: "ghost", Name: "Out of stock everywhere"},
			{SKU: "bread", Name: "Bread", CategoryID: "bakery"},
		},
		Inventory: []InventoryRow{
			{SKU: "milk", StoreID: "a", StoreName: "Konzum", Price: 1.2, Quantity: 4, StoreAddress: "Ilica 1, Zagreb"},
			{SKU: "bread", StoreID: "c", StoreName: "Pekara", Price: 2, Quantity: 0, StoreAddress: "  Vlaška 7, Zagreb "},
			{SKU: "milk", StoreID: "b", StoreName: "Spar", Price: 0.9, Quantity: 1, StoreAddress: "Savska 20, Zagreb"},
			{SKU: "milk", StoreID: "e", StoreName: "Online", Price: 0.8, Quantity: 9, StoreAddress: ""},
		},
		Reviews: []ReviewRow{
			{SKU: "milk", Rating: 4},
			{SKU: "milk", Rating: 5},
		},
	}
}

func zagreb() *geo.Coordinate {
	return &geo.Coordinate{Latitude: 45.815, Longitude: 15.9819}
}

func TestGroupOffers(t *testing.T) {
	snap := sampleSnapshot()
	products := GroupOffers(snap.Products, snap.Inventory, snap.Reviews)

	require.Len(t, products, 2)
	assert.Equal(t, "milk", products[0].SKU)
	assert.Equal(t, "bread", products[1].SKU)

	milk := products[0]
	require.Len(t, milk.Offers, 3)
	assert.Equal(t, []string{"a", "b", "e"}, []string{milk.Offers[0].StoreID, milk.Offers[1].StoreID, milk.Offers[2].StoreID})
	assert.Equal(t, 4.5, milk.Rating)
	for _, o := range milk.Offers {
		assert.Equal(t, 4.5, o.Rating)
		assert.False(t, o.Travel.Resolved)
	}

	bread := products[1]
	assert.Equal(t, 0.0, bread.Rating)
	assert.Equal(t, "Vlaška 7, Zagreb", bread.Offers[0].Address)
	assert.Equal(t, "bakery", bread.Category)
}

func TestGroupOffersIgnoresDuplicateProductRows(t *testing.T) {
	products := GroupOffers(
		[]ProductRow{{SKU: "x", Name: "first"}, {SKU: "x", Name: "second"}},
		[]InventoryRow{{SKU: "x", StoreID: "s"}},
		nil,
	)

	require.Len(t, products, 1)
	assert.Equal(t, "first", products[0].Name)
}

func TestAggregateResolvesAndScores(t *testing.T) {
	resolver := newStubResolver()
	resolver.set("Ilica 1, Zagreb", 3000, 600)
	resolver.set("Savska 20, Zagreb", 1000, 240)
	resolver.set("Vlaška 7, Zagreb", 5000, 900)

	agg := NewAggregator(resolver, Defaults(), nil)
	shopper := distanceShopper(10)
	shopper.Location = zagreb()

	products, err := agg.Aggregate(context.Background(), sampleSnapshot(), shopper)
	require.NoError(t, err)
	require.Len(t, products, 2)

	milk := products[0]
	assert.Equal(t, ResolvedEstimate(3, 10), milk.Offers[0].Travel)
	assert.Equal(t, ResolvedEstimate(1, 4), milk.Offers[1].Travel)
	// No address: never sent to the resolver.
	assert.False(t, milk.Offers[2].Travel.Resolved)
	assert.Equal(t, SentinelDistance, milk.Offers[2].Distance())

	for _, o := range milk.Offers {
		assert.GreaterOrEqual(t, o.Score, 0.0)
		assert.LessOrEqual(t, o.Score, 10.0)
	}

	// Single offer at 5 km against max(2, 10): round(10 * (0.6 + 0.4*0.5)) = 8
	assert.Equal(t, 8.0, products[1].Offers[0].Score)
	assert.Equal(t, 3, resolver.callCount())
}

func TestAggregateMiles(t *testing.T) {
	resolver := newStubResolver()
	resolver.set("Savska 20, Zagreb", 1609.34, 60)

	agg := NewAggregator(resolver, Defaults(), nil)
	shopper := distanceShopper(10)
	shopper.Unit = UnitMiles
	shopper.Location = zagreb()

	snap := &CatalogSnapshot{
		Products:  []ProductRow{{SKU: "milk"}},
		Inventory: []InventoryRow{{SKU: "milk", StoreID: "b", StoreAddress: "Savska 20, Zagreb"}},
	}
	products, err := agg.Aggregate(context.Background(), snap, shopper)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, products[0].Offers[0].Distance(), 1e-9)
	assert.InDelta(t, 1.0, products[0].Offers[0].TravelTimeMinutes(), 1e-9)
}

func TestAggregateWithoutLocationSkipsResolver(t *testing.T) {
	resolver := newStubResolver()
	agg := NewAggregator(resolver, Defaults(), nil)

	products, err := agg.Aggregate(context.Background(), sampleSnapshot(), distanceShopper(10))
	require.NoError(t, err)

	assert.Equal(t, 0, resolver.callCount())
	for _, p := range products {
		for _, o := range p.Offers {
			assert.Equal(t, SentinelDistance, o.Distance())
			assert.Equal(t, SentinelMinutes, o.TravelTimeMinutes())
		}
	}
}

func TestAggregateIsolatesFailures(t *testing.T) {
	resolver := newStubResolver()
	resolver.set("Ilica 1, Zagreb", 3000, 600)
	resolver.errs["Savska 20, Zagreb"] = errors.New("upstream 500")
	resolver.set("Vlaška 7, Zagreb", -1, 10)

	agg := NewAggregator(resolver, Defaults(), nil)
	shopper := distanceShopper(10)
	shopper.Location = zagreb()

	products, err := agg.Aggregate(context.Background(), sampleSnapshot(), shopper)
	require.NoError(t, err)

	milk := products[0]
	assert.True(t, milk.Offers[0].Travel.Resolved)
	assert.False(t, milk.Offers[1].Travel.Resolved)
	assert.False(t, products[1].Offers[0].Travel.Resolved)
}

func TestAggregateTimeoutFallsBackToSentinel(t *testing.T) {
	resolver := newStubResolver()
	resolver.set("Ilica 1, Zagreb", 3000, 600)
	resolver.delay = 200 * time.Millisecond

	cfg := Defaults()
	cfg.ResolveTimeout = 10 * time.Millisecond
	agg := NewAggregator(resolver, cfg, nil)
	shopper := distanceShopper(10)
	shopper.Location = zagreb()

	snap := &CatalogSnapshot{
		Products:  []ProductRow{{SKU: "milk"}},
		Inventory: []InventoryRow{{SKU: "milk", StoreID: "a", StoreAddress: "Ilica 1, Zagreb"}},
	}
	products, err := agg.Aggregate(context.Background(), snap, shopper)
	require.NoError(t, err)
	assert.False(t, products[0].Offers[0].Travel.Resolved)
}

func TestAggregateCancelled(t *testing.T) {
	resolver := newStubResolver()
	resolver.set("Ilica 1, Zagreb", 3000, 600)
	resolver.delay = time.Second

	agg := NewAggregator(resolver, Defaults(), nil)
	shopper := distanceShopper(10)
	shopper.Location = zagreb()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	products, err := agg.Aggregate(ctx, sampleSnapshot(), shopper)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, products)
}

func TestAggregateBoundsConcurrency(t *testing.T) {
	resolver := newStubResolver()
	resolver.delay = 5 * time.Millisecond

	snap := &CatalogSnapshot{}
	for i := 0; i < 20; i++ {
		sku := string(rune('a' + i))
		snap.Products = append(snap.Products, ProductRow{SKU: sku})
		for j := 0; j < 10; j++ {
			addr := sku + string(rune('0'+j))
			resolver.set(addr, 100, 60)
			snap.Inventory = append(snap.Inventory, InventoryRow{SKU: sku, StoreID: addr, StoreAddress: addr})
		}
	}

	cfg := Defaults()
	cfg.MaxConcurrentResolutions = 6
	cfg.MaxConcurrentResolutionsPerProduct = 3
	agg := NewAggregator(resolver, cfg, nil)
	shopper := distanceShopper(10)
	shopper.Location = zagreb()

	products, err := agg.Aggregate(context.Background(), snap, shopper)
	require.NoError(t, err)
	require.Len(t, products, 20)

	assert.Equal(t, 200, resolver.callCount())
	assert.LessOrEqual(t, resolver.peak.Load(), int32(6))
	for _, p := range products {
		for _, o := range p.Offers {
			assert.True(t, o.Travel.Resolved, "offer %s", o.StoreID)
		}
	}
}
