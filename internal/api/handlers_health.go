// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// LiveStatus is the data of the liveness probe.
type LiveStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyStatus is the data of the readiness probe.
type ReadyStatus struct {
	Status        string          `json:"status"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	Engine        recommend.Stats `json:"engine"`
	Cache         *cache.Stats    `json:"cache,omitempty"`
	AdminEnabled  bool            `json:"admin_enabled"`
}

// HealthLive reports that the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(LiveStatus{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once an engine is published and 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	eng, err := h.publisher.Current()
	if err != nil {
		rw.ServiceUnavailable("recommendation engine is still initializing")
		return
	}

	status := ReadyStatus{
		Status:        "ready",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Engine:        eng.Stats(),
		AdminEnabled:  h.adminEnabled(),
	}
	if h.cache != nil {
		s := h.cache.Stats()
		status.Cache = &s
	}
	rw.SuccessWithMeta(http.StatusOK, status, &APIMeta{SnapshotVersion: eng.Version()})
}
