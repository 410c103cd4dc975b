package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
)

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...logging.Field) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...logging.Field)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...logging.Field)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...logging.Field) { l.record("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...logging.Field) { l.record("fatal", msg) }
func (l *recordingLogger) With(_ ...logging.Field) logging.Logger { return l }
func (l *recordingLogger) Named(_ string) logging.Logger          { return l }

func (l *recordingLogger) last(t *testing.T) logEntry {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.entries)
	return l.entries[len(l.entries)-1]
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func loggingHandler(logger logging.Logger, cfg LoggingConfig, status int) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	return RequestLogging(logger, cfg)(next)
}

func TestRequestLogging_Success(t *testing.T) {
	logger := &recordingLogger{}
	h := loggingHandler(logger, DefaultLoggingConfig(), http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/charts", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := logger.last(t)
	assert.Equal(t, "info", entry.level)
	assert.Equal(t, "request completed", entry.msg)
}

func TestRequestLogging_ClientError(t *testing.T) {
	logger := &recordingLogger{}
	h := loggingHandler(logger, DefaultLoggingConfig(), http.StatusNotFound)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/charts/x", nil))

	assert.Equal(t, "warn", logger.last(t).level)
}

func TestRequestLogging_ServerError(t *testing.T) {
	logger := &recordingLogger{}
	h := loggingHandler(logger, DefaultLoggingConfig(), http.StatusInternalServerError)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/synastry/compute", nil))

	assert.Equal(t, "error", logger.last(t).level)
}

func TestRequestLogging_SlowRequest(t *testing.T) {
	logger := &recordingLogger{}
	cfg := DefaultLoggingConfig()
	cfg.SlowThreshold = time.Nanosecond

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	h := RequestLogging(logger, cfg)(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/charts", nil))

	entry := logger.last(t)
	assert.Equal(t, "warn", entry.level)
	assert.Equal(t, "request completed (slow)", entry.msg)
}

func TestRequestLogging_SkipsProbePaths(t *testing.T) {
	logger := &recordingLogger{}
	h := loggingHandler(logger, DefaultLoggingConfig(), http.StatusOK)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, 0, logger.count())
}

func TestWrappedResponseWriter_DefaultsTo200(t *testing.T) {
	logger := &recordingLogger{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok")) // no explicit WriteHeader
	})
	h := RequestLogging(logger, DefaultLoggingConfig())(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/charts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "info", logger.last(t).level)
}
