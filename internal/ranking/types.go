package ranking

import (
	"fmt"

	"github.com/kosarica/offer-service/internal/geo"
)

// DistanceUnit is the unit distances are presented in to the shopper.
type DistanceUnit string

const (
	UnitKilometers DistanceUnit = "km"
	UnitMiles      DistanceUnit = "mi"
)

// Valid reports whether u is a known unit.
func (u DistanceUnit) Valid() bool {
	return u == UnitKilometers || u == UnitMiles
}

// TravelMode is how the shopper intends to reach a store.
type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeDriving TravelMode = "driving"
	ModeBiking  TravelMode = "biking"
	ModeTransit TravelMode = "transit"
)

// Valid reports whether m is a known travel mode.
func (m TravelMode) Valid() bool {
	switch m {
	case ModeWalking, ModeDriving, ModeBiking, ModeTransit:
		return true
	}
	return false
}

// TravelMetric selects which resolved quantity the travel constraint caps.
type TravelMetric string

const (
	MetricDistance TravelMetric = "distance"
	MetricTime     TravelMetric = "time"
)

// Valid reports whether m is a known metric.
func (m TravelMetric) Valid() bool {
	return m == MetricDistance || m == MetricTime
}

// SearchType selects how the free-text query is matched.
type SearchType string

const (
	SearchProduct SearchType = "product"
	SearchStore   SearchType = "store"
)

// SortKey orders offers within a product.
type SortKey string

const (
	SortByDistance SortKey = "distance"
	SortByPrice    SortKey = "price"
	SortByScore    SortKey = "score"
)

// ProductOrder orders products in the final list.
type ProductOrder string

const (
	// OrderInsertion keeps aggregation order.
	OrderInsertion ProductOrder = ""
	// OrderBestScore sorts products by their best offer score, highest first.
	OrderBestScore ProductOrder = "score"
)

// Sentinel values reported for offers whose travel could not be resolved.
// They only surface through Offer accessors; the resolution state itself is TravelEstimate.Resolved.
const (
	SentinelDistance = 9999.0
	SentinelMinutes  = 9999.0
)

// TravelConstraint caps how far (or how long) the shopper is willing to travel.
type TravelConstraint struct {
	Mode   TravelMode   `json:"mode"`
	Metric TravelMetric `json:"metric"`
	Limit  float64      `json:"limit"`
}

// Validate returns an error if the constraint is incomplete or the limit is not positive.
func (c TravelConstraint) Validate() error {
	if !c.Mode.Valid() {
		return ErrInvalidRequest{Field: "constraint.mode", Reason: fmt.Sprintf("unknown travel mode %q", c.Mode)}
	}
	if !c.Metric.Valid() {
		return ErrInvalidRequest{Field: "constraint.metric", Reason: fmt.Sprintf("unknown metric %q", c.Metric)}
	}
	if c.Limit <= 0 {
		return ErrInvalidRequest{Field: "constraint.limit", Reason: "must be positive"}
	}
	return nil
}

// ShopperContext is the per-session state that drives a ranking pass.
// It is passed by value; a pass never observes later mutations.
type ShopperContext struct {
	Location   *geo.Coordinate  // nil when the shopper has not shared a location
	Unit       DistanceUnit     // derived once from the locale lookup
	Constraint TravelConstraint // current travel filter
}

// Validate returns an error if the context cannot drive a pass.
func (s ShopperContext) Validate() error {
	if s.Location != nil {
		if err := s.Location.Validate(); err != nil {
			return ErrInvalidRequest{Field: "location", Reason: err.Error()}
		}
	}
	if s.Unit != "" && !s.Unit.Valid() {
		return ErrInvalidRequest{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", s.Unit)}
	}
	return s.Constraint.Validate()
}

// TravelEstimate is the resolved travel distance and time for one offer.
// Distance and Minutes are only meaningful when Resolved is true.
type TravelEstimate struct {
	Resolved bool
	Distance float64 // in the shopper's unit
	Minutes  float64
}

// Unresolved is the estimate for an offer whose travel is unknown.
func Unresolved() TravelEstimate {
	return TravelEstimate{}
}

// ResolvedEstimate builds a resolved estimate.
func ResolvedEstimate(distance, minutes float64) TravelEstimate {
	return TravelEstimate{Resolved: true, Distance: distance, Minutes: minutes}
}

// Offer is one store's ability to fulfill a product.
type Offer struct {
	SKU        string
	StoreID    string
	SellerName string
	Price      float64
	Quantity   int
	Address    string // empty when the store has no postal address
	Rating     float64
	Travel     TravelEstimate
	Score      float64 // recomputed on every pass
}

// Distance returns the travel distance, or SentinelDistance when unresolved.
func (o *Offer) Distance() float64 {
	if !o.Travel.Resolved {
		return SentinelDistance
	}
	return o.Travel.Distance
}

// TravelTimeMinutes returns the travel time, or SentinelMinutes when unresolved.
func (o *Offer) TravelTimeMinutes() float64 {
	if !o.Travel.Resolved {
		return SentinelMinutes
	}
	return o.Travel.Minutes
}

// Product is a catalog entry with the offers of every store carrying it.
type Product struct {
	SKU         string
	Name        string
	Description string
	ImageRef    string
	Category    string
	Rating      float64
	Offers      []*Offer
}

// BestScore returns the highest offer score of the product.
func (p *Product) BestScore() float64 {
	best := 0.0
	for i, o := range p.Offers {
		if i == 0 || o.Score > best {
			best = o.Score
		}
	}
	return best
}

// ProductRow is a catalog row as read from the product store.
type ProductRow struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageRef    string `json:"imageRef"`
	CategoryID  string `json:"categoryId"`
}

// InventoryRow is one store's stock of one SKU.
type InventoryRow struct {
	SKU          string  `json:"sku"`
	StoreID      string  `json:"storeId"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	StoreAddress string  `json:"storeAddress"`
	StoreName    string  `json:"storeName"`
}

// ReviewRow is a single shopper review of a SKU.
type ReviewRow struct {
	SKU    string  `json:"sku"`
	Rating float64 `json:"rating"`
}

// CatalogSnapshot is the complete set of rows one pass ranks over.
type CatalogSnapshot struct {
	Products  []ProductRow
	Inventory []InventoryRow
	Reviews   []ReviewRow
}

// ErrInvalidRequest is returned when a ranking request is invalid.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}
