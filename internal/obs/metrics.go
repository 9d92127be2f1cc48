package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchesTotal       prometheus.Counter
	ProviderFailures    *prometheus.CounterVec
	ProviderLatency     *prometheus.HistogramVec
	CacheFallbacksTotal *prometheus.CounterVec
	Registry            *prometheus.Registry
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "award_searches_total",
			Help: "Total number of aggregation searches",
		}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "award_provider_failures_total",
			Help: "Provider calls that resolved to a failure, by provider and reason",
		}, []string{"provider", "reason"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "award_provider_latency_seconds",
			Help:    "Latency of individual provider searches",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider"}),
		CacheFallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "award_cache_fallbacks_total",
			Help: "Failed provider calls served from the last-known-good cache",
		}, []string{"provider"}),
		Registry: registry,
	}

	registry.MustRegister(
		m.SearchesTotal,
		m.ProviderFailures,
		m.ProviderLatency,
		m.CacheFallbacksTotal,
	)

	return m
}

func (m *Metrics) IncSearches() { m.SearchesTotal.Inc() }

func (m *Metrics) IncProviderFailure(provider, reason string) {
	m.ProviderFailures.WithLabelValues(provider, reason).Inc()
}

func (m *Metrics) ObserveProviderLatency(provider string, seconds float64) {
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) IncCacheFallback(provider string) {
	m.CacheFallbacksTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
