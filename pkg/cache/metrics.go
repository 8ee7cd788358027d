package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_cache_hits_total",
		Help: "Total number of cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_cache_misses_total",
		Help: "Total number of cache misses",
	})

	CacheSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_cache_sets_total",
		Help: "Total number of cache sets",
	})

	CacheRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_cache_rejected_total",
		Help: "Total number of cache sets dropped by the admission policy",
	})

	CacheDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_cache_deletes_total",
		Help: "Total number of cache deletes",
	})
)
