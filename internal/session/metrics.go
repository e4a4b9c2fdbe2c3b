package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "session_active",
		Help: "Number of live shopper sessions",
	})

	passesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_passes_started_total",
		Help: "Total number of ranking passes started for sessions",
	})

	passesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_passes_discarded_total",
		Help: "Total number of ranking passes discarded because a newer pass superseded them",
	})
)
