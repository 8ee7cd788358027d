package hyperliquid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchDurationSeconds tracks userFills request latency, retries included.
	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hl_holdtime_fetch_duration_seconds",
		Help:    "Duration of userFills fetches from the Hyperliquid info API",
		Buckets: prometheus.DefBuckets,
	})

	// FetchErrorsTotal tracks failed fetches.
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_fetch_errors_total",
		Help: "Total number of failed userFills fetches",
	})

	// FillsFetchedTotal tracks fills received.
	FillsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_fills_fetched_total",
		Help: "Total number of fills received from the Hyperliquid info API",
	})
)
