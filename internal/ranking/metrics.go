package ranking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcome labels.
const (
	outcomeResolved = "resolved"
	outcomeFailed   = "failed"
	outcomeSkipped  = "skipped"
)

var (
	// resolutions counts per-offer travel resolutions by outcome.
	resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_resolutions_total",
		Help: "Total number of offer travel resolutions by outcome",
	}, []string{"outcome"}) // outcome: resolved, failed, skipped

	// resolutionDuration tracks the latency of resolver calls.
	resolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ranking_resolution_duration_seconds",
		Help:    "Time taken to resolve travel for one offer",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"mode"})

	// passDuration tracks the time taken for a full ranking pass.
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranking_pass_duration_seconds",
		Help:    "Time taken for a full ranking pass",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// passResults counts passes by final status.
	passResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_passes_total",
		Help: "Total number of ranking passes by final status",
	}, []string{"status"})

	// productsReturned tracks how many products survive filtering.
	productsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranking_products_returned_count",
		Help:    "Number of products returned by a ranking pass",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
	})

	// offersPerProduct tracks the fan-out width of a product.
	offersPerProduct = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranking_offers_per_product_count",
		Help:    "Number of offers aggregated into a product",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
)

// MetricsRecorder provides methods to record ranking metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordResolution records the outcome of a single offer resolution.
func (m *MetricsRecorder) RecordResolution(outcome string) {
	resolutions.WithLabelValues(outcome).Inc()
}

// RecordResolutionDuration records how long a resolver call took.
func (m *MetricsRecorder) RecordResolutionDuration(mode TravelMode, duration time.Duration) {
	resolutionDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
}

// RecordPass records a completed ranking pass.
func (m *MetricsRecorder) RecordPass(status Status, duration time.Duration, products int) {
	passDuration.Observe(duration.Seconds())
	passResults.WithLabelValues(string(status)).Inc()
	productsReturned.Observe(float64(products))
}

// RecordOffers records the number of offers aggregated into a product.
func (m *MetricsRecorder) RecordOffers(count int) {
	offersPerProduct.Observe(float64(count))
}
