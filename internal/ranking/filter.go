package ranking

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Apply sorts each product's offers by sortKey and keeps the products that pass
// the search and travel tests, in their original order.
//
// For SearchProduct a product needs at least one offer within the travel
// constraint and a query match on its name, category or any seller name. For
// SearchStore only the query is tested, against seller names and category.
// An empty query matches everything.
func Apply(products []*Product, shopper ShopperContext, query string, searchType SearchType, sortKey SortKey) []*Product {
	needle := foldText(strings.TrimSpace(query))

	result := make([]*Product, 0, len(products))
	for _, p := range products {
		SortOffers(p.Offers, sortKey)

		var include bool
		switch searchType {
		case SearchStore:
			include = matchesStore(p, needle)
		default:
			include = anyWithinConstraint(p.Offers, shopper.Constraint) && matchesProduct(p, needle)
		}

		if include {
			result = append(result, p)
		}
	}
	return result
}

// SortOffers orders offers in place: ascending distance or price, descending
// score. Unknown keys leave the order untouched.
func SortOffers(offers []*Offer, key SortKey) {
	switch key {
	case SortByDistance:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Distance() < offers[j].Distance()
		})
	case SortByPrice:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Price < offers[j].Price
		})
	case SortByScore:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Score > offers[j].Score
		})
	}
}

// OrderProducts returns products in the requested order. The input slice is not modified.
func OrderProducts(products []*Product, order ProductOrder) []*Product {
	result := make([]*Product, len(products))
	copy(result, products)

	if order == OrderBestScore {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].BestScore() > result[j].BestScore()
		})
	}
	return result
}

// WithinConstraint reports whether the offer satisfies the travel constraint.
// Unresolved offers carry the sentinel values and fail any realistic limit.
func WithinConstraint(o *Offer, c TravelConstraint) bool {
	if c.Metric == MetricDistance {
		return o.Distance() <= c.Limit
	}
	return o.TravelTimeMinutes() <= c.Limit
}

func anyWithinConstraint(offers []*Offer, c TravelConstraint) bool {
	for _, o := range offers {
		if WithinConstraint(o, c) {
			return true
		}
	}
	return false
}

func matchesProduct(p *Product, needle string) bool {
	if needle == "" {
		return true
	}
	if containsFolded(p.Name, needle) || containsFolded(p.Category, needle) {
		return true
	}
	return anySellerMatches(p.Offers, needle)
}

func matchesStore(p *Product, needle string) bool {
	if needle == "" {
		return true
	}
	return anySellerMatches(p.Offers, needle) || containsFolded(p.Category, needle)
}

func anySellerMatches(offers []*Offer, needle string) bool {
	for _, o := range offers {
		if containsFolded(o.SellerName, needle) {
			return true
		}
	}
	return false
}

func containsFolded(haystack, foldedNeedle string) bool {
	if haystack == "" {
		return false
	}
	return strings.Contains(foldText(haystack), foldedNeedle)
}

// foldText case-folds s and strips combining marks so "Čokolada" matches "cokolada".
func foldText(s string) string {
	if s == "" {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
