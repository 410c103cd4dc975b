package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) Collector {
	t.Helper()
	c, err := NewCollector(CollectorConfig{
		Namespace: "test",
		Subsystem: "unit",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c Collector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewCollector_EmptyNamespace(t *testing.T) {
	_, err := NewCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("events_total", "Test events", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_events_total")
	assert.Contains(t, out, `kind="a"`)
	assert.Contains(t, out, "3")
}

func TestRegisterCounter_DuplicateReturnsSame(t *testing.T) {
	c := newTestCollector(t)
	v1 := c.RegisterCounter("dups_total", "Dups", "kind")
	v2 := c.RegisterCounter("dups_total", "Dups", "kind")
	v1.WithLabelValues("x").Inc()
	v2.WithLabelValues("x").Inc()

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_dups_total")
	assert.Contains(t, out, "2")
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterGauge("depth", "Test gauge", "queue")
	vec.WithLabelValues("q1").Set(7)

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_depth")
	assert.Contains(t, out, "7")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterHistogram("latency_seconds", "Test histogram", nil, "op")
	vec.WithLabelValues("build").Observe(0.02)

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_latency_seconds_bucket")
	assert.Contains(t, out, "test_unit_latency_seconds_count")
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterHistogram("timed_seconds", "Timed", nil, "op")

	timer := NewTimer(vec.WithLabelValues("x"))
	time.Sleep(time.Millisecond)
	timer.ObserveDuration()

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_timed_seconds_count{op="x"} 1`)
}

func TestTimer_NilHistogram(t *testing.T) {
	assert.NotPanics(t, func() {
		NewTimer(nil).ObserveDuration()
	})
}

func TestAppMetrics_Record(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordHTTPRequest(http.MethodPost, "/api/v1/synastry/compute", 200, 12*time.Millisecond)
	m.RecordMatrixBuild("vectorized", 23, 40*time.Microsecond, nil)
	m.RecordMatrixBuild("scalar", 0, 0, errors.New("boom"))
	m.RecordScore(72.5)
	m.RecordCacheAccess("synastry", true)
	m.RecordCacheAccess("synastry", false)
	m.RecordDBQuery("chart_insert", 3*time.Millisecond, nil)
	m.RecordError("engine", "bad_ruleset")

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/synastry/compute",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_matrix_builds_total{builder="vectorized",status="success"} 1`)
	assert.Contains(t, out, `test_unit_matrix_builds_total{builder="scalar",status="failure"} 1`)
	assert.Contains(t, out, "test_unit_compatibility_score_bucket")
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="synastry"} 1`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="synastry"} 1`)
	assert.Contains(t, out, "test_unit_db_query_duration_seconds_count")
	assert.Contains(t, out, `test_unit_errors_total{component="engine",error_type="bad_ruleset"} 1`)
}
