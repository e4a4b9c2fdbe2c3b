package ranking

import (
	"context"
	"errors"

	"github.com/kosarica/offer-service/internal/geo"
)

// ErrSourceData wraps any failure to read product, inventory or review rows.
var ErrSourceData = errors.New("catalog source data unavailable")

var errNegativeRoute = errors.New("resolver returned a negative distance or duration")

// Route is the travel distance and duration of the first route an upstream returned.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Resolver resolves travel between the shopper and a store address.
// Implementations report a missing route as an error.
type Resolver interface {
	Resolve(ctx context.Context, origin geo.Coordinate, destination string, mode TravelMode) (Route, error)
}

// CatalogSource provides the rows a pass ranks over.
// Errors should wrap ErrSourceData.
type CatalogSource interface {
	Load(ctx context.Context) (*CatalogSnapshot, error)
}
