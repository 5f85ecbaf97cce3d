package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the plan API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	fetchRows       prometheus.Histogram
	scopeHits       prometheus.Counter
	scopeMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
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

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_fetch_duration_seconds",
		Help:    "Duration of upstream schedule requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_fetch_total",
		Help: "Total upstream schedule requests",
	}, []string{"status"})

	fetchRows := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_fetch_rows",
		Help:    "Rows returned per upstream schedule request",
		Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
	})

	scopeHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_scope_cache_hits_total",
		Help: "Plan requests served without an upstream fetch",
	})

	scopeMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_scope_cache_misses_total",
		Help: "Plan requests that triggered an upstream fetch",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, fetchDuration, fetchTotal, fetchRows, scopeHits, scopeMisses, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		fetchDuration:   fetchDuration,
		fetchTotal:      fetchTotal,
		fetchRows:       fetchRows,
		scopeHits:       scopeHits,
		scopeMisses:     scopeMisses,
		dbQueryDuration: dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScheduleFetch records one upstream schedule request. Implements the
// repository fetch observer.
func (m *MetricsService) ObserveScheduleFetch(httpCode int, rows int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", httpCode)
	m.fetchDuration.WithLabelValues(labelStatus).Observe(duration.Seconds())
	m.fetchTotal.WithLabelValues(labelStatus).Inc()
	m.fetchRows.Observe(float64(rows))
}

// RecordScopeLookup counts whether a plan request was satisfied from the
// cached snapshot.
func (m *MetricsService) RecordScopeLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.scopeHits.Inc()
	} else {
		m.scopeMisses.Inc()
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
