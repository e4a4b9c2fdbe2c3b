package ranking

import "math"

// Score weights. Price dominates: a sole offer has no price to compare against,
// so it receives the full price weight.
const (
	priceWeight    = 0.6
	distanceWeight = 0.4

	// normalizationEpsilon keeps min-max normalization finite when every offer
	// shares the same price or distance.
	normalizationEpsilon = 0.001
)

// MaxReasonableDistance returns the distance at which a sole offer's distance
// component reaches zero. With a known location it follows the travel limit,
// floored at cfg.MinMaxReasonableDistance; otherwise it is the fixed default.
func MaxReasonableDistance(shopper ShopperContext, cfg *Config) float64 {
	if shopper.Location == nil {
		return cfg.DefaultMaxReasonableDistance
	}
	return math.Max(cfg.MinMaxReasonableDistance, shopper.Constraint.Limit)
}

// ScoreOffers computes the 0-10 desirability score of every offer in place.
//
// A single offer is scored against maxReasonableDistance only. Several offers
// are min-max normalized against each other on price and distance. The
// single-offer result is not clamped, so a store beyond maxReasonableDistance
// scores below zero.
//
// Unresolved offers take part with the sentinel distance, which pushes them to
// the bottom of the distance range.
//
// Calling ScoreOffers with no offers or a non-positive maxReasonableDistance is
// a programming error and panics.
func ScoreOffers(offers []*Offer, maxReasonableDistance float64) {
	if len(offers) == 0 {
		panic("ranking: ScoreOffers called with no offers")
	}
	if maxReasonableDistance <= 0 {
		panic("ranking: maxReasonableDistance must be positive")
	}

	if len(offers) == 1 {
		o := offers[0]
		normalizedDistance := 1 - o.Distance()/maxReasonableDistance
		o.Score = math.Round(10 * (priceWeight + distanceWeight*normalizedDistance))
		return
	}

	minPrice, maxPrice := priceRange(offers)
	minDistance, maxDistance := distanceRange(offers)

	for _, o := range offers {
		normalizedPrice := 1 - (o.Price-minPrice)/(maxPrice-minPrice+normalizationEpsilon)
		normalizedDistance := 1 - (o.Distance()-minDistance)/(maxDistance-minDistance+normalizationEpsilon)
		o.Score = math.Round(10 * (priceWeight*normalizedPrice + distanceWeight*normalizedDistance))
	}
}

// priceRange finds the minimum and maximum price across offers.
func priceRange(offers []*Offer) (min, max float64) {
	min, max = offers[0].Price, offers[0].Price
	for _, o := range offers[1:] {
		min = math.Min(min, o.Price)
		max = math.Max(max, o.Price)
	}
	return min, max
}

// distanceRange finds the minimum and maximum distance across offers.
func distanceRange(offers []*Offer) (min, max float64) {
	min, max = offers[0].Distance(), offers[0].Distance()
	for _, o := range offers[1:] {
		min = math.Min(min, o.Distance())
		max = math.Max(max, o.Distance())
	}
	return min, max
}
