package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// notification pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	pushSent        prometheus.Counter
	pushFailed      prometheus.Counter
	sweepDuration   prometheus.Histogram
	sweepRecords    prometheus.Counter
	timersArmed     prometheus.Gauge
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	pushSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "push_deliveries_total",
		Help: "Total successful push deliveries",
	})

	pushFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "push_failures_total",
		Help: "Total failed push deliveries",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_sweep_duration_seconds",
		Help:    "Duration of dispatch sweeper runs",
		Buckets: prometheus.DefBuckets,
	})

	sweepRecords := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_records_total",
		Help: "Total durable notification records processed by the sweeper",
	})

	timersArmed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "local_timers_armed",
		Help: "Currently armed local notification timers",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		pushSent, pushFailed, sweepDuration, sweepRecords, timersArmed, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		pushSent:        pushSent,
		pushFailed:      pushFailed,
		sweepDuration:   sweepDuration,
		sweepRecords:    sweepRecords,
		timersArmed:     timersArmed,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

// ObserveHTTPRequest records one HTTP request observation.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheOperation tracks a cache hit or miss.
func (s *MetricsService) RecordCacheOperation(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// RecordPush tracks one per-destination delivery outcome.
func (s *MetricsService) RecordPush(success bool) {
	if s == nil {
		return
	}
	if success {
		s.pushSent.Inc()
	} else {
		s.pushFailed.Inc()
	}
}

// ObserveSweep records one sweeper run.
func (s *MetricsService) ObserveSweep(duration time.Duration, records int) {
	if s == nil {
		return
	}
	s.sweepDuration.Observe(duration.Seconds())
	s.sweepRecords.Add(float64(records))
}

// SetTimersArmed publishes the current local timer count.
func (s *MetricsService) SetTimersArmed(n int) {
	if s == nil {
		return
	}
	s.timersArmed.Set(float64(n))
}
