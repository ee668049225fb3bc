package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // 4xx, e.g. "Activity full"
	OutcomeError    = "error"    // 5xx, transport failure, bad payload
	OutcomeShed     = "shed"     // circuit breaker open, request never sent
)

// UpstreamMetrics tracks calls to the activities API.
type UpstreamMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BreakerState    prometheus.Gauge
}

// NewUpstreamMetrics creates and registers upstream metrics on the given registry.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total activities API calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of activities API calls in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.BreakerState)
	return m
}
