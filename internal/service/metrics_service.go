package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

// MetricsService owns the Prometheus registry for the HOD service.
// Every method is safe on a nil receiver so metrics stay optional.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	badgeCounts     *prometheus.GaugeVec
	upstreamCalls   *prometheus.HistogramVec
	sourceResults   *prometheus.CounterVec
	teacherMessages *prometheus.CounterVec
	resourceReqs    *prometheus.CounterVec
	dispatchJobs    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		badgeCounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hod_badge_count",
			Help: "Current navigation badge counts per department",
		}, []string{"department", "badge"}),
		upstreamCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_call_duration_seconds",
			Help:    "Duration of calls to the school management API",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "outcome"}),
		sourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "data_source_results_total",
			Help: "Values served per data source and provenance",
		}, []string{"source", "provenance"}),
		teacherMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hod_teacher_messages_total",
			Help: "Teacher messages by outcome",
		}, []string{"status"}),
		resourceReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hod_resource_requests_total",
			Help: "Resource requests submitted, by forwarding outcome",
		}, []string{"forwarded"}),
		dispatchJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_jobs_total",
			Help: "Outbound dispatch jobs by type and outcome",
		}, []string{"type", "outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hod_active_sessions",
			Help: "Department stores currently alive",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheLookups,
		m.badgeCounts, m.upstreamCalls, m.sourceResults,
		m.teacherMessages, m.resourceReqs, m.dispatchJobs, m.activeSessions,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// SetBadgeCounts mirrors a department's badge counts into gauges.
func (m *MetricsService) SetBadgeCounts(department string, counts models.BadgeCounts) {
	if m == nil {
		return
	}
	m.badgeCounts.WithLabelValues(department, string(BadgeDepartment)).Set(float64(counts.Department))
	m.badgeCounts.WithLabelValues(department, string(BadgeResources)).Set(float64(counts.Resources))
	m.badgeCounts.WithLabelValues(department, string(BadgeReports)).Set(float64(counts.Reports))
}

// ObserveUpstreamCall records one live fetch attempt.
func (m *MetricsService) ObserveUpstreamCall(source string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.upstreamCalls.WithLabelValues(source, outcome).Observe(duration.Seconds())
}

// RecordSourceResult counts what provenance a data source served.
func (m *MetricsService) RecordSourceResult(source string, provenance models.Provenance) {
	if m == nil {
		return
	}
	m.sourceResults.WithLabelValues(source, string(provenance)).Inc()
}

// RecordTeacherMessage counts teacher message outcomes.
func (m *MetricsService) RecordTeacherMessage(status models.MessageStatus) {
	if m == nil {
		return
	}
	m.teacherMessages.WithLabelValues(string(status)).Inc()
}

// RecordResourceRequest counts submitted resource requests.
func (m *MetricsService) RecordResourceRequest(forwarded bool) {
	if m == nil {
		return
	}
	m.resourceReqs.WithLabelValues(strconv.FormatBool(forwarded)).Inc()
}

// RecordDispatchJob counts outbound job outcomes (delivered, retried, dropped).
func (m *MetricsService) RecordDispatchJob(jobType, outcome string) {
	if m == nil {
		return
	}
	m.dispatchJobs.WithLabelValues(jobType, outcome).Inc()
}

// SetActiveSessions reports the number of live department stores.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
