package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	sweepRuns       prometheus.Counter
	overdueAlerts   prometheus.Counter
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sweepRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_sweep_runs_total",
		Help: "Total overdue-payment sweep executions",
	})

	overdueAlerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_overdue_alerts_total",
		Help: "Total overdue-payment notifications raised by the sweep",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	registry.MustRegister(requestDuration, requestTotal, sweepRuns, overdueAlerts,
		cacheLatency, cacheWrite, cacheHits, cacheMisses)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		sweepRuns:       sweepRuns,
		overdueAlerts:   overdueAlerts,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordSweep counts a sweep execution and the alerts it raised.
func (s *MetricsService) RecordSweep(alerts int) {
	s.sweepRuns.Inc()
	if alerts > 0 {
		s.overdueAlerts.Add(float64(alerts))
	}
}

// RecordCacheOperation tracks a cache lookup.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks a cache set.
func (s *MetricsService) ObserveCacheWrite(duration time.Duration) {
	s.cacheWrite.Observe(duration.Seconds())
}
