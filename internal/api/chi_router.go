// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/middleware"
)

// slowRequestThreshold promotes access log lines to warn.
const slowRequestThreshold = time.Second

// Router assembles the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	staticDir     string
	logger        zerolog.Logger
}

// NewRouter creates a Router for the given server settings.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg *config.ServerConfig, handler *Handler, logger zerolog.Logger) *Router {
	mwCfg := ChiMiddlewareConfigFrom(cfg)
	mwCfg.RateLimitOnLimit = func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).TooManyRequests("rate limit exceeded")
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwCfg),
		staticDir:     cfg.StaticDir,
		logger:        logger,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Applied to every route, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(router.logger, slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

	// Compatibility route, same contract as the original service.
	r.With(router.chiMiddleware.RateLimit()).Get("/recommend", h.RecommendCompat)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders(false))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).NotFound("no such endpoint")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		})

		r.Route("/health", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		// Long-lived connections are not counted by the request limiter.
		if h.realtime != nil {
			r.Get("/ws", h.realtime.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/recommend", h.Recommend)
			r.Get("/resolve", h.Resolve)

			if h.adminEnabled() {
				r.Route("/admin", func(r chi.Router) {
					r.Use(h.auth.RequireAdmin(adminAuthFailed))
					r.Use(h.authz.Authorize(adminForbidden))
					r.Get("/status", h.AdminStatus)
					r.Post("/reload", h.AdminReload)
				})
			} else {
				r.HandleFunc("/admin/*", h.AdminDisabled)
			}
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	if fs := router.staticFiles(); fs != nil {
		r.Handle("/*", fs)
	}

	return r
}

// staticFiles serves the configured directory, or returns nil when it does
// not exist.
func (router *Router) staticFiles() http.Handler {
	if router.staticDir == "" {
		return nil
	}
	info, err := os.Stat(router.staticDir)
	if err != nil || !info.IsDir() {
		router.logger.Debug().Str("dir", router.staticDir).Msg("Static directory not found, not serving static files")
		return nil
	}
	return http.FileServer(http.Dir(router.staticDir))
}
