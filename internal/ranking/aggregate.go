package ranking

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const tracerName = "github.com/kosarica/offer-service/internal/ranking"

// Aggregator groups catalog rows into products and resolves the travel of every offer.
type Aggregator struct {
	resolver Resolver
	config   *Config
	inflight *semaphore.Weighted // bounds outbound resolver calls across all products
	metrics  *MetricsRecorder
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewAggregator creates a new aggregator.
func NewAggregator(resolver Resolver, config *Config, metrics *MetricsRecorder) *Aggregator {
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &Aggregator{
		resolver: resolver,
		config:   config,
		inflight: semaphore.NewWeighted(int64(config.MaxConcurrentResolutions)),
		metrics:  metrics,
		logger:   log.With().Str("component", "offer_aggregator").Logger(),
		tracer:   otel.Tracer(tracerName),
	}
}

// Aggregate groups the snapshot into products, resolves every offer's travel
// and scores the offers. It returns an error only when ctx ends before every
// resolution settled; the partial products are not returned.
func (a *Aggregator) Aggregate(ctx context.Context, snapshot *CatalogSnapshot, shopper ShopperContext) ([]*Product, error) {
	products := GroupOffers(snapshot.Products, snapshot.Inventory, snapshot.Reviews)

	if err := a.ResolveTravel(ctx, products, shopper); err != nil {
		return nil, err
	}

	maxDistance := MaxReasonableDistance(shopper, a.config)
	for _, p := range products {
		ScoreOffers(p.Offers, maxDistance)
	}
	return products, nil
}

// GroupOffers builds one product per product row that has inventory, with one
// offer per inventory row, in row order. Every offer carries the product's mean
// review rating (0 without reviews) and starts unresolved.
func GroupOffers(products []ProductRow, inventory []InventoryRow, reviews []ReviewRow) []*Product {
	bySKU := make(map[string][]InventoryRow, len(products))
	for _, row := range inventory {
		bySKU[row.SKU] = append(bySKU[row.SKU], row)
	}

	ratingSum := make(map[string]float64)
	ratingCount := make(map[string]int)
	for _, r := range reviews {
		ratingSum[r.SKU] += r.Rating
		ratingCount[r.SKU]++
	}

	result := make([]*Product, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, row := range products {
		rows := bySKU[row.SKU]
		if len(rows) == 0 {
			continue
		}
		if _, dup := seen[row.SKU]; dup {
			continue
		}
		seen[row.SKU] = struct{}{}

		rating := 0.0
		if n := ratingCount[row.SKU]; n > 0 {
			rating = ratingSum[row.SKU] / float64(n)
		}

		p := &Product{
			SKU:         row.SKU,
			Name:        row.Name,
			Description: row.Description,
			ImageRef:    row.ImageRef,
			Category:    row.CategoryID,
			Rating:      rating,
			Offers:      make([]*Offer, 0, len(rows)),
		}
		for _, inv := range rows {
			p.Offers = append(p.Offers, &Offer{
				SKU:        inv.SKU,
				StoreID:    inv.StoreID,
				SellerName: inv.StoreName,
				Price:      inv.Price,
				Quantity:   inv.Quantity,
				Address:    strings.TrimSpace(inv.StoreAddress),
				Rating:     rating,
				Travel:     Unresolved(),
			})
		}
		result = append(result, p)
	}
	return result
}

// ResolveTravel resolves every offer of every product concurrently and blocks
// until all of them settled. Failures fall back to an unresolved estimate on
// the failing offer only.
func (a *Aggregator) ResolveTravel(ctx context.Context, products []*Product, shopper ShopperContext) error {
	var g errgroup.Group
	g.SetLimit(a.config.MaxConcurrentProducts)

	for _, p := range products {
		g.Go(func() error {
			a.resolveProduct(ctx, p, shopper)
			return nil
		})
	}
	_ = g.Wait()

	return ctx.Err()
}

func (a *Aggregator) resolveProduct(ctx context.Context, p *Product, shopper ShopperContext) {
	a.metrics.RecordOffers(len(p.Offers))

	var g errgroup.Group
	g.SetLimit(a.config.MaxConcurrentResolutionsPerProduct)

	for _, o := range p.Offers {
		g.Go(func() error {
			o.Travel = a.resolveOffer(ctx, o, shopper)
			return nil
		})
	}
	_ = g.Wait()
}

func (a *Aggregator) resolveOffer(ctx context.Context, o *Offer, shopper ShopperContext) TravelEstimate {
	if shopper.Location == nil || o.Address == "" {
		a.metrics.RecordResolution(outcomeSkipped)
		return Unresolved()
	}

	if err := a.inflight.Acquire(ctx, 1); err != nil {
		a.metrics.RecordResolution(outcomeFailed)
		return Unresolved()
	}
	defer a.inflight.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, a.config.ResolveTimeout)
	defer cancel()

	callCtx, span := a.tracer.Start(callCtx, "ranking.resolve_offer", trace.WithAttributes(
		attribute.String("sku", o.SKU),
		attribute.String("store_id", o.StoreID),
		attribute.String("mode", string(shopper.Constraint.Mode)),
	))
	defer span.End()

	start := time.Now()
	route, err := a.resolver.Resolve(callCtx, *shopper.Location, o.Address, shopper.Constraint.Mode)
	a.metrics.RecordResolutionDuration(shopper.Constraint.Mode, time.Since(start))

	if err == nil && (route.DistanceMeters < 0 || route.DurationSeconds < 0) {
		err = errNegativeRoute
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		a.logger.Debug().
			Err(err).
			Str("sku", o.SKU).
			Str("store_id", o.StoreID).
			Msg("Travel resolution failed, offer left unresolved")
		a.metrics.RecordResolution(outcomeFailed)
		return Unresolved()
	}

	a.metrics.RecordResolution(outcomeResolved)
	return ResolvedEstimate(MetersToUnit(route.DistanceMeters, shopper.Unit), route.DurationSeconds/60)
}
