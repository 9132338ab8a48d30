// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package middleware provides HTTP middleware for the Cinematch API.

All middleware has the func(http.Handler) http.Handler shape used by chi:

  - RequestID: propagates or generates X-Request-ID and a correlation ID
  - AccessLog: one zerolog line per request, warn on slow requests
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern
  - Compression: gzip for clients that accept it

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger, 500*time.Millisecond))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
*/
package middleware
