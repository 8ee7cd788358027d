package matcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ObservationsTotal tracks holding observations produced by FIFO matching.
	ObservationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_matcher_observations_total",
		Help: "Total number of holding observations emitted by the matcher",
	})

	// OverClosedFillsTotal tracks closing fills larger than the open quantity they could match.
	OverClosedFillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_matcher_overclosed_fills_total",
		Help: "Total number of closing fills with quantity left after the open queue was exhausted",
	})
)
