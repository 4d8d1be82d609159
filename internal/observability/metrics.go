// internal/observability/metrics.go
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	wakesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ulp",
			Subsystem: "host",
			Name:      "wakes_total",
			Help:      "Host activations by wake cause.",
		},
		[]string{"cause"},
	)
	crashesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ulp",
			Subsystem: "satellite",
			Name:      "crashes_total",
			Help:      "Acknowledged satellite crashes.",
		},
	)
	readingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ulp",
			Subsystem: "satellite",
			Name:      "readings_total",
			Help:      "Readings harvested by the host.",
		},
		[]string{"degenerate"},
	)
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ulp",
			Subsystem: "host",
			Name:      "requests_total",
			Help:      "Reading requests by outcome.",
		},
		[]string{"result"},
	)
	stallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ulp",
			Subsystem: "satellite",
			Name:      "heartbeat_stalls_total",
			Help:      "Detected satellite heartbeat stalls.",
		},
	)
	telemetryErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ulp",
			Subsystem: "telemetry",
			Name:      "write_errors_total",
			Help:      "Failed telemetry block writes.",
		},
	)
	watermarkGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ulp",
			Subsystem: "satellite",
			Name:      "min_stack_address",
			Help:      "Lowest satellite stack address observed.",
		},
	)
	loopCountGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ulp",
			Subsystem: "satellite",
			Name:      "loop_count",
			Help:      "Last observed satellite loop counter.",
		},
	)
)

// RegisterMetrics registers every collector with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			wakesTotal,
			crashesTotal,
			readingsTotal,
			requestsTotal,
			stallsTotal,
			telemetryErrors,
			watermarkGauge,
			loopCountGauge,
		)
	})
}

func RecordWake(cause string) {
	wakesTotal.WithLabelValues(cause).Inc()
}

func RecordCrash() {
	crashesTotal.Inc()
}

func RecordReading(degenerate bool) {
	label := "false"
	if degenerate {
		label = "true"
	}
	readingsTotal.WithLabelValues(label).Inc()
}

func RecordRequest(accepted bool) {
	result := "ignored"
	if accepted {
		result = "issued"
	}
	requestsTotal.WithLabelValues(result).Inc()
}

func RecordStall() {
	stallsTotal.Inc()
}

func RecordTelemetryError() {
	telemetryErrors.Inc()
}

func SetWatermark(addr uint32) {
	watermarkGauge.Set(float64(addr))
}

func SetLoopCount(n uint32) {
	loopCountGauge.Set(float64(n))
}
