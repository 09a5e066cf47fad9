// Package metrics defines the Prometheus metric collectors used across the
// recommender and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesTotal         *prometheus.CounterVec
	QueryLatency         *prometheus.HistogramVec
	ResultsCount         *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	CacheCircuitState    prometheus.Gauge
	CatalogBuildSeconds  prometheus.Gauge
	CatalogSize          *prometheus.GaugeVec
	LoaderDroppedRows    *prometheus.CounterVec
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendation_queries_total",
				Help: "Total recommendation queries by kind (ratings, genre, user) and outcome (ok, not_found, no_similar_users, error).",
			},
			[]string{"kind", "outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recommendation_query_latency_seconds",
				Help:    "Recommendation query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"kind", "cache_status"},
		),
		ResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recommendation_results_count",
				Help:    "Number of titles returned per recommendation query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{"kind"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recommendation_cache_hits_total",
				Help: "Total number of recommendation cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recommendation_cache_misses_total",
				Help: "Total number of recommendation cache misses.",
			},
		),
		CacheCircuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "recommendation_cache_circuit_state",
				Help: "State of the cache circuit breaker (0 closed, 1 open, 2 half-open).",
			},
		),
		CatalogBuildSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_build_seconds",
				Help: "Wall time of the last catalog build (matrices and similarities).",
			},
		),
		CatalogSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_entities",
				Help: "Number of entities in the catalog by kind (users, rated_titles, genre_titles, vocabulary).",
			},
			[]string{"kind"},
		),
		LoaderDroppedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loader_dropped_rows_total",
				Help: "Input rows silently dropped by the dataset loader, by reason.",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesTotal,
		m.QueryLatency,
		m.ResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheCircuitState,
		m.CatalogBuildSeconds,
		m.CatalogSize,
		m.LoaderDroppedRows,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
