// Package metrics holds the Prometheus collectors for the gateway and
// reviewer services.
//
// Each service builds its own Registry so tests can run in parallel without
// touching the global default registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "rorireview"

// Outcome labels for reviewer metrics
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
	OutcomeFallback    = "fallback"
)

// Registry wraps a prometheus registry with the process and Go collectors
// already installed.
type Registry struct {
	reg *prometheus.Registry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// GatewayMetrics instruments the forwarding gateway.
type GatewayMetrics struct {
	// RequestsTotal counts forwarded requests.
	// Labels: status (upstream status code, or "bad_gateway")
	RequestsTotal *prometheus.CounterVec

	// UpstreamDurationSeconds measures the round trip to the reviewer.
	UpstreamDurationSeconds prometheus.Histogram
}

func NewGatewayMetrics(r *Registry) *GatewayMetrics {
	factory := promauto.With(r.reg)
	return &GatewayMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Review requests forwarded by the gateway, by upstream status",
		}, []string{"status"}),
		UpstreamDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "upstream_duration_seconds",
			Help:      "Time spent waiting on the reviewer service",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
}

// RecordStatus counts one forwarded request by upstream status code.
func (m *GatewayMetrics) RecordStatus(code int) {
	m.RequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

// RecordBadGateway counts one request whose upstream could not be reached.
func (m *GatewayMetrics) RecordBadGateway() {
	m.RequestsTotal.WithLabelValues("bad_gateway").Inc()
}

// ReviewerMetrics instruments the AI reviewer.
type ReviewerMetrics struct {
	// ReviewsTotal counts completed reviews.
	// Labels: mode (single, agentic), outcome (ok, rate_limited, error, fallback)
	ReviewsTotal *prometheus.CounterVec

	// ReviewDurationSeconds measures time spent producing one review.
	// Labels: mode
	ReviewDurationSeconds *prometheus.HistogramVec
}

func NewReviewerMetrics(r *Registry) *ReviewerMetrics {
	factory := promauto.With(r.reg)
	return &ReviewerMetrics{
		ReviewsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "reviewer",
			Name:      "reviews_total",
			Help:      "Reviews produced by the reviewer, by mode and outcome",
		}, []string{"mode", "outcome"}),
		ReviewDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "reviewer",
			Name:      "review_duration_seconds",
			Help:      "Time spent producing one review",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 15, 30, 60},
		}, []string{"mode"}),
	}
}

func (m *ReviewerMetrics) Observe(mode, outcome string, seconds float64) {
	m.ReviewsTotal.WithLabelValues(mode, outcome).Inc()
	m.ReviewDurationSeconds.WithLabelValues(mode).Observe(seconds)
}
