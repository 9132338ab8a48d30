// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP surface of Cinematch, routed with Chi.

# Endpoints

	GET  /recommend?title=&limit=         compatibility route, {"message","data"}
	GET  /api/v1/recommend?title=&limit=  envelope with query, resolved, path, items
	GET  /api/v1/resolve?title=           resolved title and stage, 404 if none
	GET  /api/v1/health/live              always 200
	GET  /api/v1/health/ready             200 with engine stats once published
	GET  /api/v1/admin/status             snapshot and cache state (operator or admin token)
	POST /api/v1/admin/reload             queue a reload (admin token)
	GET  /api/v1/ws                       websocket snapshot notifications, when enabled
	GET  /metrics                         Prometheus exposition
	GET  /*                               static files, when the directory exists

Handlers read the engine from a recommend.Publisher on every request and
never hold it across requests, so a reload is picked up by the next request.

# Response Format

/api/v1 responses use APIResponse:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 1}}

The compatibility route keeps its historical shape, including
{"detail": "..."} for 422 and 503.

# Caching

Recommendation bodies are cached in a cache.Store under a key built from the
snapshot version, route, title and effective limit. Publishing a new engine
changes the version, so stale entries are never served.
*/
package api
