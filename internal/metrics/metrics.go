// Package metrics exposes Prometheus instruments for the phrase cache, the
// provider and the HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ZaguanLabs/gophrase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophrase"

// Metrics holds the registry and every instrument registered on it.
type Metrics struct {
	registry *prometheus.Registry

	lookupsTotal        *prometheus.CounterVec
	providerCallsTotal  *prometheus.CounterVec
	cacheEntries        prometheus.Gauge
	trimmedTotal        prometheus.Counter
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
}

// New creates a registry with Go and process collectors and the gophrase
// instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		lookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of cache lookups by direction and result",
			},
			[]string{"direction", "result"},
		),
		providerCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total number of AI provider requests by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		cacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_entries",
				Help:      "Number of entries currently held in the phrase cache",
			},
		),
		trimmedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_trimmed_entries_total",
				Help:      "Total number of expired entries removed by trimming",
			},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
	}
}

// ObserveLookup implements gophrase.Observer.
func (m *Metrics) ObserveLookup(direction gophrase.Direction, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookupsTotal.WithLabelValues(direction.String(), result).Inc()
}

// ObserveProvider implements gophrase.Observer.
func (m *Metrics) ObserveProvider(direction gophrase.Direction, outcome gophrase.ProviderOutcome) {
	m.providerCallsTotal.WithLabelValues(direction.String(), string(outcome)).Inc()
}

// SetCacheEntries records the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	m.cacheEntries.Set(float64(n))
}

// AddTrimmed counts entries removed by a trim.
func (m *Metrics) AddTrimmed(n int) {
	m.trimmedTotal.Add(float64(n))
}

// RequestStarted marks an HTTP request in flight and returns a func that
// records its completion.
func (m *Metrics) RequestStarted(method, path string) func(status int) {
	m.httpInFlight.Inc()
	start := time.Now()

	return func(status int) {
		m.httpInFlight.Dec()
		if path == "" {
			path = "unknown"
		}
		m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Verify Metrics implements gophrase.Observer
var _ gophrase.Observer = (*Metrics)(nil)
