package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BreakerOpen indicates whether upstream calls are being rejected.
	BreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hl_holdtime_circuit_breaker_open",
		Help: "Whether the upstream circuit breaker is open or probing (1) or closed (0)",
	})

	// BreakerStateChanges tracks the number of times the breaker changed state.
	BreakerStateChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_circuit_breaker_state_changes_total",
		Help: "Total number of circuit breaker state transitions",
	})

	// BreakerRejectedTotal tracks calls rejected while the breaker was open.
	BreakerRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hl_holdtime_circuit_breaker_rejected_total",
		Help: "Total number of upstream calls rejected by the circuit breaker",
	})
)
