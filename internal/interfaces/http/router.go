// Package http wires the HTTP transport: route tree, middleware chain, and
// server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cosmichub/synastry/internal/interfaces/http/handlers"
	"github.com/cosmichub/synastry/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.  Nil handlers leave their routes unmounted; nil
// middleware is skipped.
type RouterConfig struct {
	SynastryHandler *handlers.SynastryHandler
	ChartHandler    *handlers.ChartHandler
	HealthHandler   *handlers.HealthHandler

	CORSMiddleware      *middleware.CORSMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.RateLimitMiddleware != nil {
		r.Use(cfg.RateLimitMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerSynastryRoutes(api, cfg.SynastryHandler)
		registerChartRoutes(api, cfg.ChartHandler)
	})

	return r
}

// registerSynastryRoutes mounts computation endpoints under /synastry.
func registerSynastryRoutes(r chi.Router, h *handlers.SynastryHandler) {
	if h == nil {
		return
	}
	r.Route("/synastry", func(sr chi.Router) {
		sr.Post("/compute", h.Compute)
		sr.Post("/aspects", h.Aspects)
		sr.Post("/charts/{chartAID}/{chartBID}", h.ComputeStored)
	})
}

// registerChartRoutes mounts stored-chart endpoints under /charts.
func registerChartRoutes(r chi.Router, h *handlers.ChartHandler) {
	if h == nil {
		return
	}
	r.Route("/charts", func(cr chi.Router) {
		cr.Get("/", h.List)
		cr.Post("/", h.Create)

		cr.Route("/{chartID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Put("/", h.Update)
			item.Delete("/", h.Delete)
		})
	})
}
