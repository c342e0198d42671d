// Package metrics exposes the assistant's Prometheus collectors. All methods
// are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	chatOutcomes  *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	rateLimited   prometheus.Counter
}

// New builds a private registry with the Go and process collectors plus the
// assistant's own series.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chatOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "health_assistant",
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"outcome"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "health_assistant",
			Name:      "oracle_request_duration_seconds",
			Help:      "Latency of generateContent calls by result.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "health_assistant",
			Name:      "answer_cache_lookups_total",
			Help:      "Answer cache lookups by result.",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "health_assistant",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the token bucket.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.chatOutcomes, m.oracleLatency, m.cacheLookups, m.rateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ChatOutcome(outcome string) {
	if m == nil {
		return
	}
	m.chatOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OracleCall(d time.Duration, result string) {
	if m == nil {
		return
	}
	m.oracleLatency.WithLabelValues(result).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
