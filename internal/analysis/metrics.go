package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// AnalysesTotal counts account analyses by outcome (ok, no_data, error).
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hl_holdtime_analysis_accounts_total",
		Help: "Total number of account analyses by outcome",
	}, []string{"outcome"})

	// AnalysisDurationSeconds tracks end-to-end analysis latency including the fetch.
	AnalysisDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hl_holdtime_analysis_duration_seconds",
		Help:    "Duration of a single account analysis",
		Buckets: prometheus.DefBuckets,
	})

	ReportCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_analysis_report_cache_hits_total",
		Help: "Total number of report cache hits",
	})

	ReportCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_analysis_report_cache_misses_total",
		Help: "Total number of report cache misses",
	})
)
