package metrics

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics for the synastry service.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Engine layer
	MatrixBuildsTotal   CounterVec
	MatrixBuildDuration HistogramVec
	AspectCount         HistogramVec
	ScoreDistribution   HistogramVec

	// Cache layer
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Database layer
	DBQueryDuration HistogramVec
	ChartsStored    GaugeVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default histogram buckets.
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultBuildDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultAspectCountBuckets   = []float64{0, 5, 10, 15, 20, 30, 40, 60, 80, 100}
	DefaultScoreBuckets         = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
)

// NewAppMetrics registers all application metrics on the collector.
func NewAppMetrics(c Collector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = c.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = c.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = c.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	m.MatrixBuildsTotal = c.RegisterCounter("matrix_builds_total", "Aspect matrix builds", "builder", "status")
	m.MatrixBuildDuration = c.RegisterHistogram("matrix_build_duration_seconds", "Aspect matrix build duration", DefaultBuildDurationBuckets, "builder")
	m.AspectCount = c.RegisterHistogram("matrix_aspect_count", "Populated cells per matrix", DefaultAspectCountBuckets, "builder")
	m.ScoreDistribution = c.RegisterHistogram("compatibility_score", "Overall compatibility score distribution", DefaultScoreBuckets)

	m.CacheHitsTotal = c.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = c.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.DBQueryDuration = c.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.ChartsStored = c.RegisterGauge("charts_stored", "Stored natal charts", "status")

	m.HealthCheckStatus = c.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = c.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// RecordHTTPRequest records one completed HTTP request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMatrixBuild records one aspect-matrix build.
func (m *AppMetrics) RecordMatrixBuild(builder string, aspects int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.MatrixBuildsTotal.WithLabelValues(builder, status).Inc()
	if err == nil {
		m.MatrixBuildDuration.WithLabelValues(builder).Observe(duration.Seconds())
		m.AspectCount.WithLabelValues(builder).Observe(float64(aspects))
	}
}

// RecordScore records one computed compatibility score.
func (m *AppMetrics) RecordScore(overall float64) {
	m.ScoreDistribution.WithLabelValues().Observe(overall)
}

// RecordCacheAccess records one cache lookup outcome.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordDBQuery records one repository operation.
func (m *AppMetrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues("postgres", "query_error").Inc()
	}
}

// RecordError records one component error.
func (m *AppMetrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
