package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

// MetricsService owns the Prometheus registry and a few counters mirrored
// for the JSON metrics snapshot. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	combineTotal    *prometheus.CounterVec
	combineDuration prometheus.Observer
	combineSheets   prometheus.Gauge
	jobTotal        *prometheus.CounterVec
	jobRunning      prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec

	cacheHitCount  uint64
	cacheMissCount uint64
	requestCount   uint64
	combineCount   uint64
	jobCount       uint64
}

// NewMetricsService registers the collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_cache_latency_seconds",
		Help:    "Latency for dashboard cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_cache_write_seconds",
		Help:    "Latency for dashboard cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Total dashboard cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Total dashboard cache misses",
	})

	combineTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "combine_runs_total",
		Help: "Combined workbook builds by outcome",
	}, []string{"status"})

	combineDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "combine_duration_seconds",
		Help:    "Time spent building combined workbooks",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	combineSheets := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "combine_last_sheets",
		Help: "Sheets written by the last successful combine",
	})

	jobTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_jobs_total",
		Help: "Scrape and combine jobs by outcome",
	}, []string{"status"})

	jobRunning := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scrape_job_running",
		Help: "1 while a scrape job is running",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of run history queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		combineTotal, combineDuration, combineSheets, jobTotal, jobRunning, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		combineTotal:    combineTotal,
		combineDuration: combineDuration,
		combineSheets:   combineSheets,
		jobTotal:        jobTotal,
		jobRunning:      jobRunning,
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

// Registry exposes the underlying registry for tests and gathering.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records a dashboard cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveCombine records one combine attempt; status is finished, empty or failed.
func (m *MetricsService) ObserveCombine(status string, duration time.Duration, sheets int) {
	if m == nil {
		return
	}
	m.combineTotal.WithLabelValues(status).Inc()
	m.combineDuration.Observe(duration.Seconds())
	if status == "finished" {
		m.combineSheets.Set(float64(sheets))
	}
	atomic.AddUint64(&m.combineCount, 1)
}

// SetJobRunning flips the running gauge.
func (m *MetricsService) SetJobRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.jobRunning.Set(1)
		return
	}
	m.jobRunning.Set(0)
}

// ObserveJob counts a finished job by its final status.
func (m *MetricsService) ObserveJob(status models.RunStatus) {
	if m == nil {
		return
	}
	m.jobTotal.WithLabelValues(string(status)).Inc()
	atomic.AddUint64(&m.jobCount, 1)
}

func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// Snapshot returns the mirrored counters for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return models.SystemMetrics{
		RequestsTotal: atomic.LoadUint64(&m.requestCount),
		CacheHits:     hits,
		CacheMisses:   misses,
		CacheHitRatio: ratio,
		CombineRuns:   atomic.LoadUint64(&m.combineCount),
		ScrapeJobs:    atomic.LoadUint64(&m.jobCount),
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
}
