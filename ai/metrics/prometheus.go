// Package metrics provides Prometheus metrics export for the chat
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports chat pipeline metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Chat metrics
	chatLatency  *prometheus.HistogramVec
	chatRequests *prometheus.CounterVec

	// Intent parsing metrics
	parseResults *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec

	// Dispatch metrics
	dispatchLatency *prometheus.HistogramVec
	dispatchErrors  *prometheus.CounterVec

	// Narration metrics
	narrations *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.chatLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopchat",
			Subsystem: "chat",
			Name:      "request_latency_seconds",
			Help:      "End-to-end chat request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"operation"},
	)

	e.chatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopchat",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total number of chat requests",
		},
		[]string{"operation", "action", "status"},
	)

	e.parseResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopchat",
			Subsystem: "intent",
			Name:      "parse_results_total",
			Help:      "Intent parse outcomes by source (llm or fallback)",
		},
		[]string{"source", "operation"},
	)

	e.llmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopchat",
			Subsystem: "intent",
			Name:      "llm_latency_seconds",
			Help:      "LLM classification request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"model", "provider"},
	)

	e.dispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopchat",
			Subsystem: "dispatch",
			Name:      "latency_seconds",
			Help:      "Operation dispatch latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"operation", "action"},
	)

	e.dispatchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopchat",
			Subsystem: "dispatch",
			Name:      "errors_total",
			Help:      "Total number of dispatch errors",
		},
		[]string{"operation", "action"},
	)

	e.narrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopchat",
			Subsystem: "narrator",
			Name:      "summaries_total",
			Help:      "Narration outcomes by source (llm or template)",
		},
		[]string{"source"},
	)

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopchat",
			Subsystem: "store",
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopchat",
			Subsystem: "store",
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	registry.MustRegister(
		e.chatLatency,
		e.chatRequests,
		e.parseResults,
		e.llmLatency,
		e.dispatchLatency,
		e.dispatchErrors,
		e.narrations,
		e.cacheHits,
		e.cacheMisses,
	)

	return e
}

// RecordChatRequest records a completed chat request.
func (e *PrometheusExporter) RecordChatRequest(operation, action string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}

	e.chatRequests.WithLabelValues(operation, action, status).Inc()
	e.chatLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// RecordParseResult records an intent parse outcome. Source is "llm" for
// a successful classification and "fallback" for the default intent.
func (e *PrometheusExporter) RecordParseResult(source, operation string) {
	e.parseResults.WithLabelValues(source, operation).Inc()
}

// RecordLLMLatency records model request latency.
func (e *PrometheusExporter) RecordLLMLatency(model, provider string, latency time.Duration) {
	e.llmLatency.WithLabelValues(model, provider).Observe(latency.Seconds())
}

// RecordDispatch records an operation dispatch.
func (e *PrometheusExporter) RecordDispatch(operation, action string, latency time.Duration, err error) {
	e.dispatchLatency.WithLabelValues(operation, action).Observe(latency.Seconds())
	if err != nil {
		e.dispatchErrors.WithLabelValues(operation, action).Inc()
	}
}

// RecordNarration records a narration outcome.
func (e *PrometheusExporter) RecordNarration(fellBack bool) {
	source := "llm"
	if fellBack {
		source = "template"
	}
	e.narrations.WithLabelValues(source).Inc()
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit(cacheType string) {
	e.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss(cacheType string) {
	e.cacheMisses.WithLabelValues(cacheType).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
