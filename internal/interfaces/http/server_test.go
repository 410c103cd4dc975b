package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmichub/synastry/internal/config"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
)

func TestServer_StartStop(t *testing.T) {
	cfg := config.ServerConfig{
		Port:            0, // random free port
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
	srv := NewServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), logging.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err, "clean shutdown should not surface ErrServerClosed")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestServer_HandlerExposed(t *testing.T) {
	router := testRouter()
	srv := NewServer(config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second}, router, logging.NewNopLogger())

	assert.NotNil(t, srv.Handler())
}
