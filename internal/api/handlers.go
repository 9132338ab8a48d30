// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/auth"
	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Reloader queues a snapshot reload. RequestReload returns false when a
// reload is already pending.
type Reloader interface {
	RequestReload(reason string) bool
}

// HandlerOptions wires a Handler. Cache and the admin fields are optional:
// a nil Cache disables response caching, and the admin API is only served
// when Auth, Authorizer and Reloader are all set.
type HandlerOptions struct {
	Publisher    *recommend.Publisher
	Cache        cache.Store
	CacheBackend string
	Auth         *auth.JWTManager
	Authorizer   *auth.Authorizer
	Reloader     Reloader
	// Realtime serves /api/v1/ws when set.
	Realtime http.Handler
	Logger   zerolog.Logger
}

// Handler serves the HTTP API from whichever engine is currently published.
type Handler struct {
	publisher    *recommend.Publisher
	cache        cache.Store
	cacheBackend string
	auth         *auth.JWTManager
	authz        *auth.Authorizer
	reloader     Reloader
	realtime     http.Handler
	startTime    time.Time
	logger       zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // options passed by value
func NewHandler(opts HandlerOptions) *Handler {
	backend := opts.CacheBackend
	if backend == "" {
		backend = cache.BackendMemory
	}
	return &Handler{
		publisher:    opts.Publisher,
		cache:        opts.Cache,
		cacheBackend: backend,
		auth:         opts.Auth,
		authz:        opts.Authorizer,
		reloader:     opts.Reloader,
		realtime:     opts.Realtime,
		startTime:    time.Now(),
		logger:       opts.Logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) adminEnabled() bool {
	return h.auth != nil && h.authz != nil && h.reloader != nil
}
