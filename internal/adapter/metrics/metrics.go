package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signupboard"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Set bundles the metric groups the board registers.
type Set struct {
	HTTP     *HTTPMetrics
	Upstream *UpstreamMetrics
	Notice   *NoticeMetrics
}

// NewSet registers every metric group on reg.
func NewSet(reg prometheus.Registerer, extra ...prometheus.Collector) *Set {
	reg.MustRegister(extra...)
	return &Set{
		HTTP:     NewHTTPMetrics(reg),
		Upstream: NewUpstreamMetrics(reg),
		Notice:   NewNoticeMetrics(reg),
	}
}
