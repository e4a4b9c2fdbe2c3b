package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/geocoding"
	"github.com/kosarica/offer-service/internal/ranking"
)

type stubGeocoder map[string]geo.Coordinate

func (s stubGeocoder) Geocode(_ context.Context, address string) (*geocoding.Result, error) {
	loc, ok := s[address]
	if !ok {
		return nil, geocoding.ErrNoResult
	}
	return &geocoding.Result{Location: loc, FormattedAddress: address}, nil
}

func TestGeodesicResolver(t *testing.T) {
	store := geo.Coordinate{Latitude: 45.815, Longitude: 16.0}
	resolver := NewGeodesicResolver(stubGeocoder{"Store": store})

	route, err := resolver.Resolve(context.Background(), origin, "Store", ranking.ModeWalking)
	require.NoError(t, err)

	meters := geo.DistanceMeters(origin, store)
	assert.InDelta(t, meters, route.DistanceMeters, 1e-6)
	// 5 km/h walking
	assert.InDelta(t, meters/(5000.0/3600), route.DurationSeconds, 1e-6)

	driving, err := resolver.Resolve(context.Background(), origin, "Store", ranking.ModeDriving)
	require.NoError(t, err)
	assert.Less(t, driving.DurationSeconds, route.DurationSeconds)
}

func TestGeodesicResolverUnknownAddress(t *testing.T) {
	resolver := NewGeodesicResolver(stubGeocoder{})

	_, err := resolver.Resolve(context.Background(), origin, "Nowhere", ranking.ModeWalking)
	assert.ErrorIs(t, err, geocoding.ErrNoResult)

	_, err = resolver.Resolve(context.Background(), origin, "Nowhere", "hover")
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}
