// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
)

// AccessLog logs one line per request. Requests slower than slow are logged
// at warn level; server errors at error level. slow <= 0 disables the slow
// request warning.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func AccessLog(logger zerolog.Logger, slow time.Duration) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "api").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusWriter(w)

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			var event *zerolog.Event
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logger.Error()
			case slow > 0 && duration > slow:
				event = logger.Warn().Bool("slow", true)
			default:
				event = logger.Debug()
			}
			event.
				Str("request_id", logging.RequestIDFromContext(r.Context())).
				Str("correlation_id", logging.CorrelationIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Int("bytes", wrapper.bytes).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}
