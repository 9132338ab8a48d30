// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the Cinematch server.

Cinematch answers "movies like this one" from a MovieLens snapshot. It
resolves a free-text title to a catalog entry, then fuses TF-IDF content
similarity with item-item collaborative similarity to rank the rest of the
catalog.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── SnapshotService (load, build, publish, reload)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── CachePurgeService (snapshot.published -> cache purge)
│   ├── WebSocketHubService (client registry and fan-out)
│   └── SnapshotBroadcastService (snapshot.published -> websocket clients)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (chi router)

Component initialization order:

 1. Configuration: koanf with defaults, config.yaml, .env and environment
 2. Logging: zerolog with JSON or console output
 3. Metrics: build info gauge
 4. Response cache: in-memory LRU or BadgerDB
 5. Event bus: watermill over gochannel or NATS (external or embedded)
 6. Supervisor tree and services

The HTTP server starts before the first engine is published. Until then the
recommendation routes answer 503 and /api/v1/health/ready reports not ready.

# Configuration

Core environment variables:

	HTTP_PORT=8000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	CATALOG_DRIVER=csv           # csv or duckdb
	MOVIES_PATH=data/movies.csv
	RATINGS_PATH=data/ratings.csv
	AUTO_FETCH=false             # download ml-latest-small when files are missing
	RELOAD_INTERVAL=0            # poll the snapshot files, 0 disables
	CACHE_BACKEND=memory         # memory or badger
	ADMIN_JWT_SECRET=<32+ chars> # enables /api/v1/admin/status and /reload
	ADMIN_POLICY_PATH=           # casbin policy CSV, empty uses the built-in one
	WEBSOCKET_ENABLED=true       # serve snapshot notifications at /api/v1/ws
	EVENTS_BACKEND=gochannel     # gochannel or nats
	NATS_URL=nats://host:4222    # required for nats unless NATS_EMBEDDED=true
	NATS_EMBEDDED=false          # run a NATS server in-process

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within SHUTDOWN_TIMEOUT, then services that did not stop
in time are reported.

The process exits non-zero when the configuration is invalid or when the
first snapshot cannot be loaded.

# Usage

	go run ./cmd/cinematch fetch
	go run ./cmd/server
	curl 'localhost:8000/recommend?title=toy%20story'
*/
package main
