// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package websocket

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	handshakeTimeout = 10 * time.Second
	registerTimeout  = 5 * time.Second
)

// Handler upgrades HTTP requests and registers the connections with a hub.
type Handler struct {
	hub      *Hub
	origins  []string
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a handler accepting the given origins. "*" allows any
// origin, but the Origin header must still be present.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	h := &Handler{
		hub:     hub,
		origins: allowedOrigins,
		logger:  logger.With().Str("component", "websocket").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: handshakeTimeout,
		CheckOrigin:      h.checkOrigin,
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn)
	ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
	defer cancel()
	if err := h.hub.Register(ctx, client); err != nil {
		h.logger.Warn().Err(err).Msg("websocket hub not accepting clients")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "hub unavailable"))
		_ = conn.Close()
		return
	}
	client.Start()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.logger.Warn().Msg("websocket connection rejected: missing Origin header")
		return false
	}
	if slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin) {
		return true
	}
	h.logger.Warn().Str("origin", strings.ReplaceAll(origin, "\n", "")).Msg("websocket connection rejected from unauthorized origin")
	return false
}
