package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// AccountsClassifiedTotal counts classified accounts by result (matched, rejected).
	AccountsClassifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hl_holdtime_batch_accounts_classified_total",
		Help: "Total number of accounts classified by batch runs",
	}, []string{"result"})

	// AccountsSkippedTotal counts accounts left out of a batch run by reason.
	AccountsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hl_holdtime_batch_accounts_skipped_total",
		Help: "Total number of accounts skipped by batch runs",
	}, []string{"reason"})

	RunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hl_holdtime_batch_run_duration_seconds",
		Help:    "Duration of batch runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
)
