package metrics

import "github.com/prometheus/client_golang/prometheus"

// NoticeMetrics tracks the per-visitor status areas.
type NoticeMetrics struct {
	AreasCurrent prometheus.Gauge
	ShownTotal   *prometheus.CounterVec
	Evictions    prometheus.Counter
}

// NewNoticeMetrics creates and registers notice metrics on the given registry.
func NewNoticeMetrics(reg prometheus.Registerer) *NoticeMetrics {
	m := &NoticeMetrics{
		AreasCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notice",
			Name:      "areas_current",
			Help:      "Number of visitor status areas held in memory.",
		}),
		ShownTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notice",
			Name:      "shown_total",
			Help:      "Total notices shown, by kind.",
		}, []string{"kind"}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notice",
			Name:      "evictions_total",
			Help:      "Total idle status areas evicted.",
		}),
	}

	reg.MustRegister(m.AreasCurrent, m.ShownTotal, m.Evictions)
	return m
}
