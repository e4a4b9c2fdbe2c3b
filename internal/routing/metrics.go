package routing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamCalls counts routing upstream calls by outcome.
	upstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_upstream_calls_total",
		Help: "Total number of routing upstream calls by upstream and outcome",
	}, []string{"upstream", "outcome"}) // outcome: ok, no_route, error

	// cacheLookups counts route cache lookups.
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_cache_lookups_total",
		Help: "Total number of route cache lookups by result",
	}, []string{"result"}) // result: hit, miss, shared

	// cacheEntries tracks the number of cached routes.
	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "routing_cache_entries",
		Help: "Number of routes currently cached",
	})

	// breakerState tracks the circuit breaker state (0 closed, 1 open, 2 half-open).
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "routing_circuit_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open",
	}, []string{"name"})

	// breakerRejections counts calls rejected by an open breaker.
	breakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_circuit_breaker_rejections_total",
		Help: "Total number of calls rejected by an open circuit breaker",
	}, []string{"name"})
)
