// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"

	"github.com/tomtom215/cinematch/internal/auth"
	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// ReloadResponse is the data of POST /api/v1/admin/reload.
type ReloadResponse struct {
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// AdminStatus is the data of GET /api/v1/admin/status.
type AdminStatus struct {
	Subject      string           `json:"subject"`
	Role         string           `json:"role"`
	Ready        bool             `json:"ready"`
	Engine       *recommend.Stats `json:"engine,omitempty"`
	CacheBackend string           `json:"cache_backend,omitempty"`
	Cache        *cache.Stats     `json:"cache,omitempty"`
}

// AdminStatus reports the serving snapshot and cache counters to operators.
// Unlike the readiness probe it answers 200 before the first publish.
func (h *Handler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	status := AdminStatus{}
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		status.Subject = c.Subject
		status.Role = c.Role
	}

	var meta *APIMeta
	if eng, err := h.publisher.Current(); err == nil {
		stats := eng.Stats()
		status.Ready = true
		status.Engine = &stats
		meta = &APIMeta{SnapshotVersion: eng.Version()}
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		status.CacheBackend = h.cacheBackend
		status.Cache = &stats
	}
	NewResponseWriter(w, r).SuccessWithMeta(http.StatusOK, status, meta)
}

// AdminReload queues a snapshot reload. The reload runs asynchronously in
// the snapshot service; readiness and the snapshot version in later
// responses show when it has been published.
func (h *Handler) AdminReload(w http.ResponseWriter, r *http.Request) {
	subject := "unknown"
	if c, ok := auth.ClaimsFromContext(r.Context()); ok && c.Subject != "" {
		subject = c.Subject
	}

	queued := h.reloader.RequestReload("admin:" + subject)
	logging.Ctx(r.Context()).Info().
		Str("subject", sanitizeLogValue(subject)).
		Bool("queued", queued).
		Msg("Snapshot reload requested")

	resp := ReloadResponse{Queued: true, Message: "reload queued"}
	if !queued {
		resp = ReloadResponse{Queued: false, Message: "a reload is already pending"}
	}
	NewResponseWriter(w, r).SuccessWithMeta(http.StatusAccepted, resp, nil)
}

// AdminDisabled answers admin routes when no JWT secret is configured.
func (h *Handler) AdminDisabled(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).NotFound("admin API is disabled")
}

// adminForbidden is the Authorizer rejection writer.
func adminForbidden(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Forbidden("this token's role may not call this endpoint")
}

// adminAuthFailed is the RequireAdmin rejection writer.
func adminAuthFailed(w http.ResponseWriter, r *http.Request, _ error) {
	NewResponseWriter(w, r).Unauthorized("a valid admin bearer token is required")
}
