// Package metrics provides Prometheus metrics for the tracker application.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream GraphQL metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	CacheHitsTotal    *prometheus.CounterVec
	CacheMissesTotal  *prometheus.CounterVec
	PipelineRunsTotal *prometheus.CounterVec
	VehiclesServed    *prometheus.GaugeVec
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	upstreamRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_upstream_requests_total",
			Help: "Total number of GraphQL calls made against the upstream API",
		},
		[]string{"operation", "status"},
	)

	upstreamRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_upstream_request_duration_seconds",
			Help:    "Upstream GraphQL call latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	cacheHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_cache_hits_total",
			Help: "Requests served from a fresh cached snapshot",
		},
		[]string{"dataset"},
	)

	cacheMissesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_cache_misses_total",
			Help: "Requests that triggered a pipeline run",
		},
		[]string{"dataset"},
	)

	pipelineRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_pipeline_runs_total",
			Help: "Completed pipeline executions by outcome",
		},
		[]string{"dataset", "outcome"},
	)

	vehiclesServed := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tracker_vehicles_served",
			Help: "Number of vehicles in the most recent snapshot",
		},
		[]string{"dataset"},
	)

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		upstreamRequestsTotal,
		upstreamRequestDuration,
		cacheHitsTotal,
		cacheMissesTotal,
		pipelineRunsTotal,
		vehiclesServed,
	)

	return &Metrics{
		Registry:                registry,
		HTTPRequestsTotal:       httpRequestsTotal,
		HTTPRequestDuration:     httpRequestDuration,
		UpstreamRequestsTotal:   upstreamRequestsTotal,
		UpstreamRequestDuration: upstreamRequestDuration,
		CacheHitsTotal:          cacheHitsTotal,
		CacheMissesTotal:        cacheMissesTotal,
		PipelineRunsTotal:       pipelineRunsTotal,
		VehiclesServed:          vehiclesServed,
	}
}

// Handler returns the exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
