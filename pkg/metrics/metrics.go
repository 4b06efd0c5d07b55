package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-catalog-api/internal/models"
)

// Metrics holds the catalog's Prometheus instruments. All methods are safe
// on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	fetchLatency   *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	hiddenRecords  prometheus.Counter
	staleResponses prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of remote product fetches by mode.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed remote product fetches by mode and error kind.",
		}, []string{"mode", "kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Product pages served from cache.",
		}, []string{"mode"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Product pages not found in cache.",
		}, []string{"mode"}),
		hiddenRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hidden_records_total",
			Help:      "Malformed product records dropped before filtering.",
		}),
		staleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Fetch responses discarded because a newer request superseded them.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}

	registry.MustRegister(
		m.fetchLatency,
		m.fetchErrors,
		m.cacheHits,
		m.cacheMisses,
		m.hiddenRecords,
		m.staleResponses,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveFetch(mode models.Mode, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchLatency.WithLabelValues(string(mode)).Observe(d.Seconds())
}

func (m *Metrics) FetchFailed(mode models.Mode, kind string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(string(mode), kind).Inc()
}

func (m *Metrics) CacheHit(mode models.Mode) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) CacheMiss(mode models.Mode) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) HiddenRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.hiddenRecords.Add(float64(n))
}

func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

func (m *Metrics) HTTPRequest(route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
