package routing

import (
	"context"
	"fmt"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/geocoding"
	"github.com/kosarica/offer-service/internal/ranking"
)

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, error)
}

// Average speeds in km/h used to estimate duration from straight-line distance.
var defaultSpeeds = map[ranking.TravelMode]float64{
	ranking.ModeWalking: 5,
	ranking.ModeBiking:  15,
	ranking.ModeTransit: 25,
	ranking.ModeDriving: 40,
}

// GeodesicResolver geocodes the store address and estimates travel from the
// great-circle distance. It needs no routing quota and serves as an offline mode.
type GeodesicResolver struct {
	geocoder Geocoder
	speeds   map[ranking.TravelMode]float64
}

// NewGeodesicResolver creates a resolver backed by geocoder.
func NewGeodesicResolver(geocoder Geocoder) *GeodesicResolver {
	return &GeodesicResolver{geocoder: geocoder, speeds: defaultSpeeds}
}

// Resolve implements ranking.Resolver.
func (r *GeodesicResolver) Resolve(ctx context.Context, origin geo.Coordinate, destination string, mode ranking.TravelMode) (ranking.Route, error) {
	speed, ok := r.speeds[mode]
	if !ok {
		return ranking.Route{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	result, err := r.geocoder.Geocode(ctx, destination)
	if err != nil {
		return ranking.Route{}, fmt.Errorf("locate %q: %w", destination, err)
	}

	meters := geo.DistanceMeters(origin, result.Location)
	seconds := meters / (speed * 1000 / 3600)
	return ranking.Route{DistanceMeters: meters, DurationSeconds: seconds}, nil
}
