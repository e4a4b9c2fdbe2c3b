package ranking

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EmptyResultsMessage is shown when a pass yields no products.
const EmptyResultsMessage = "No products found. Try widening your travel filter or searching for something else."

// Status is the display state of a result feed.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
)

// Query carries the search and ordering options of a pass.
type Query struct {
	Text       string
	SearchType SearchType
	SortKey    SortKey
	Order      ProductOrder
}

// Result is the outcome of a ranking pass.
type Result struct {
	Status       Status
	Products     []*Product
	ResultsCount int
	Message      string
}

// Loading reports whether a pass is still in flight.
func (r *Result) Loading() bool {
	return r.Status == StatusLoading
}

func newResult(products []*Product) *Result {
	if len(products) == 0 {
		return &Result{Status: StatusEmpty, Products: []*Product{}, Message: EmptyResultsMessage}
	}
	return &Result{Status: StatusReady, Products: products, ResultsCount: len(products)}
}

// Service runs ranking passes: load, aggregate, score, filter, order.
type Service struct {
	source     CatalogSource
	aggregator *Aggregator
	metrics    *MetricsRecorder
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewService creates a new ranking service.
func NewService(source CatalogSource, resolver Resolver, config *Config) *Service {
	metrics := NewMetricsRecorder()
	return &Service{
		source:     source,
		aggregator: NewAggregator(resolver, config, metrics),
		metrics:    metrics,
		logger:     log.With().Str("component", "ranking_service").Logger(),
		tracer:     otel.Tracer(tracerName),
	}
}

// Rank runs one complete pass for shopper and q.
//
// A catalog source failure yields an empty result and no error. The only error
// returned is ctx's, when the pass was cancelled before it finished.
func (s *Service) Rank(ctx context.Context, shopper ShopperContext, q Query) (*Result, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "ranking.Rank", trace.WithAttributes(
		attribute.String("query", q.Text),
		attribute.String("search_type", string(q.SearchType)),
		attribute.String("sort_key", string(q.SortKey)),
		attribute.Bool("has_location", shopper.Location != nil),
	))
	defer span.End()

	snapshot, err := s.source.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		s.logger.Error().Err(err).Msg("Failed to load catalog, returning empty result")
		result := newResult(nil)
		s.metrics.RecordPass(result.Status, time.Since(start), 0)
		return result, nil
	}

	products, err := s.aggregator.Aggregate(ctx, snapshot, shopper)
	if err != nil {
		span.SetStatus(codes.Error, "pass cancelled")
		return nil, err
	}

	products = Apply(products, shopper, q.Text, q.SearchType, q.SortKey)
	products = OrderProducts(products, q.Order)

	result := newResult(products)
	s.metrics.RecordPass(result.Status, time.Since(start), result.ResultsCount)
	span.SetAttributes(attribute.Int("results_count", result.ResultsCount))

	s.logger.Debug().
		Int("products", result.ResultsCount).
		Dur("duration", time.Since(start)).
		Msg("Ranking pass completed")

	return result, nil
}
