// Package monitoring wires the gateway's Prometheus metrics.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	MockFallbacks   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway metrics on the given
// registerer. Pass a fresh registry in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "affgate_requests_total",
				Help: "Total number of gateway requests.",
			},
			[]string{"method", "result"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "affgate_request_latency_seconds",
				Help:    "End-to-end latency of gateway requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "affgate_cache_lookups_total",
				Help: "Cache lookups by outcome.",
			},
			[]string{"method", "outcome"},
		),
		MockFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "affgate_mock_fallbacks_total",
				Help: "Mock-mode responses by cause.",
			},
			[]string{"method", "cause"},
		),
		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "affgate_upstream_latency_seconds",
				Help:    "Latency of upstream calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(m.Requests, m.RequestLatency, m.CacheLookups, m.MockFallbacks, m.UpstreamLatency)
	return m
}

// RecordRequest records one completed gateway request.
func (m *Metrics) RecordRequest(method, result string, duration time.Duration) {
	m.Requests.WithLabelValues(method, result).Inc()
	m.RequestLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(method string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(method, outcome).Inc()
}

// RecordMockFallback records a mock-mode response and its cause.
func (m *Metrics) RecordMockFallback(method, cause string) {
	m.MockFallbacks.WithLabelValues(method, cause).Inc()
}

// RecordUpstreamLatency records the duration of one upstream call.
func (m *Metrics) RecordUpstreamLatency(method string, duration time.Duration) {
	m.UpstreamLatency.WithLabelValues(method).Observe(duration.Seconds())
}
