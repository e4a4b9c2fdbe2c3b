package handlers

import (
	"time"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
	"github.com/kosarica/offer-service/internal/session"
)

// Location is a WGS 84 point.
type Location struct {
	Latitude  float64 `json:"lat" binding:"gte=-90,lte=90" jsonschema:"required,minimum=-90,maximum=90"`
	Longitude float64 `json:"lng" binding:"gte=-180,lte=180" jsonschema:"required,minimum=-180,maximum=180"`
}

// Constraint caps how far or how long the shopper travels.
type Constraint struct {
	Mode   string  `json:"mode" binding:"required,oneof=walking driving biking transit" jsonschema:"required,enum=walking,enum=driving,enum=biking,enum=transit"`
	Metric string  `json:"metric" binding:"required,oneof=distance time" jsonschema:"required,enum=distance,enum=time"`
	Limit  float64 `json:"limit" binding:"required,gt=0" jsonschema:"required,exclusiveMinimum=0"`
}

// QueryOptions selects matching and ordering of a ranking pass.
type QueryOptions struct {
	Query      string `json:"query,omitempty"`
	SearchType string `json:"searchType,omitempty" binding:"omitempty,oneof=product store" jsonschema:"enum=product,enum=store"`
	// Offer order within each product; omitted keeps aggregation order.
	SortKey       string `json:"sortKey,omitempty" binding:"omitempty,oneof=distance price score" jsonschema:"enum=distance,enum=price,enum=score"`
	OrderProducts string `json:"orderProducts,omitempty" binding:"omitempty,oneof=insertion score" jsonschema:"enum=insertion,enum=score"`
}

// RankRequest runs one stateless ranking pass.
type RankRequest struct {
	Location   *Location  `json:"location,omitempty"`
	Unit       string     `json:"unit,omitempty" binding:"omitempty,oneof=km mi" jsonschema:"enum=km,enum=mi"`
	Constraint Constraint `json:"constraint" jsonschema:"required"`
	QueryOptions
}

// CreateSessionRequest starts a shopper session. Unit is derived from the
// client's country when omitted.
type CreateSessionRequest struct {
	Location   *Location  `json:"location,omitempty"`
	Unit       string     `json:"unit,omitempty" binding:"omitempty,oneof=km mi" jsonschema:"enum=km,enum=mi"`
	Constraint Constraint `json:"constraint" jsonschema:"required"`
}

// SetLocationRequest replaces the shopper location. A null location clears it.
type SetLocationRequest struct {
	Location *Location `json:"location"`
}

// OfferResponse is one store's offer of a product.
type OfferResponse struct {
	StoreID           string  `json:"storeId" jsonschema:"required"`
	SellerName        string  `json:"sellerName"`
	Price             float64 `json:"price" jsonschema:"required"`
	Quantity          int     `json:"quantity"`
	Address           string  `json:"address,omitempty"`
	Rating            float64 `json:"rating"`
	Resolved          bool    `json:"resolved"`
	Distance          float64 `json:"distance" jsonschema:"required"`
	TravelTimeMinutes float64 `json:"travelTimeMinutes" jsonschema:"required"`
	// Score is 0-10 when a product has several offers. A sole offer is scored
	// against the travel limit and is not clamped, so it can fall outside 0-10.
	Score float64 `json:"score" jsonschema:"required" jsonschema_description:"Desirability score. 0-10 across several offers; a sole offer is unclamped and may fall outside that range."`
}

// ProductResponse is a product with its ranked offers.
type ProductResponse struct {
	SKU         string           `json:"sku" jsonschema:"required"`
	Name        string           `json:"name" jsonschema:"required"`
	Description string           `json:"description,omitempty"`
	ImageRef    string           `json:"imageRef,omitempty"`
	Category    string           `json:"category,omitempty"`
	Rating      float64          `json:"rating"`
	Offers      []*OfferResponse `json:"offers" jsonschema:"required"`
}

// ResultResponse is the outcome of a ranking pass.
type ResultResponse struct {
	Status       string             `json:"status" jsonschema:"required,enum=idle,enum=loading,enum=ready,enum=empty"`
	Loading      bool               `json:"loading"`
	ResultsCount int                `json:"resultsCount"`
	Unit         string             `json:"unit,omitempty"`
	Products     []*ProductResponse `json:"products" jsonschema:"required"`
	Message      string             `json:"message,omitempty"`
}

// SessionResponse is the state of a shopper session.
type SessionResponse struct {
	ID         string       `json:"id" jsonschema:"required"`
	Unit       string       `json:"unit" jsonschema:"required"`
	Location   *Location    `json:"location,omitempty"`
	Constraint Constraint   `json:"constraint"`
	Query      QueryOptions `json:"query"`
	CreatedAt  time.Time    `json:"createdAt"`
	ExpiresAt  time.Time    `json:"expiresAt"`
}

// GeocodeResponse is the location of an address.
type GeocodeResponse struct {
	Address          string   `json:"address" jsonschema:"required"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	Location         Location `json:"location" jsonschema:"required"`
}

func (l *Location) coordinate() *geo.Coordinate {
	if l == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

func locationFrom(c *geo.Coordinate) *Location {
	if c == nil {
		return nil
	}
	return &Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

func (c Constraint) travel() ranking.TravelConstraint {
	return ranking.TravelConstraint{
		Mode:   ranking.TravelMode(c.Mode),
		Metric: ranking.TravelMetric(c.Metric),
		Limit:  c.Limit,
	}
}

func (q QueryOptions) query() ranking.Query {
	out := ranking.Query{
		Text:       q.Query,
		SearchType: ranking.SearchType(q.SearchType),
		SortKey:    ranking.SortKey(q.SortKey),
	}
	if out.SearchType == "" {
		out.SearchType = ranking.SearchProduct
	}
	if q.OrderProducts == "score" {
		out.Order = ranking.OrderBestScore
	}
	return out
}

func queryOptionsFrom(q ranking.Query) QueryOptions {
	order := "insertion"
	if q.Order == ranking.OrderBestScore {
		order = "score"
	}
	return QueryOptions{
		Query:         q.Text,
		SearchType:    string(q.SearchType),
		SortKey:       string(q.SortKey),
		OrderProducts: order,
	}
}

// NewResultResponse converts a ranking result to its wire form.
func NewResultResponse(r *ranking.Result, unit ranking.DistanceUnit) *ResultResponse {
	products := make([]*ProductResponse, 0, len(r.Products))
	for _, p := range r.Products {
		offers := make([]*OfferResponse, len(p.Offers))
		for i, o := range p.Offers {
			offers[i] = &OfferResponse{
				StoreID:           o.StoreID,
				SellerName:        o.SellerName,
				Price:             o.Price,
				Quantity:          o.Quantity,
				Address:           o.Address,
				Rating:            o.Rating,
				Resolved:          o.Travel.Resolved,
				Distance:          o.Distance(),
				TravelTimeMinutes: o.TravelTimeMinutes(),
				Score:             o.Score,
			}
		}
		products = append(products, &ProductResponse{
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			ImageRef:    p.ImageRef,
			Category:    p.Category,
			Rating:      p.Rating,
			Offers:      offers,
		})
	}

	return &ResultResponse{
		Status:       string(r.Status),
		Loading:      r.Loading(),
		ResultsCount: r.ResultsCount,
		Unit:         string(unit),
		Products:     products,
		Message:      r.Message,
	}
}

func sessionResponse(v session.View) *SessionResponse {
	return &SessionResponse{
		ID:       v.ID,
		Unit:     string(v.Shopper.Unit),
		Location: locationFrom(v.Shopper.Location),
		Constraint: Constraint{
			Mode:   string(v.Shopper.Constraint.Mode),
			Metric: string(v.Shopper.Constraint.Metric),
			Limit:  v.Shopper.Constraint.Limit,
		},
		Query:     queryOptionsFrom(v.Query),
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
	}
}
