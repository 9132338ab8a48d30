// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services provides suture.Service implementations for Cinematch.

Each service implements

	type Service interface {
	    Serve(ctx context.Context) error
	}

and identifies itself through fmt.Stringer for suture's event log.

# Available Services

SnapshotService (data layer):
  - Builds and publishes the first engine, fetching the dataset if allowed
  - Rebuilds on poll ticks and RequestReload when the files change
  - Emits snapshot.published on the event bus
  - A failed first build returns suture.ErrTerminateSupervisorTree

CachePurgeService (messaging layer):
  - Subscribes to snapshot.published and purges the response cache

WebSocketHubService and SnapshotBroadcastService (messaging layer):
  - Run the websocket hub loop
  - Forward snapshot.published events to connected clients

HTTPServerService (api layer):
  - Wraps *http.Server with graceful shutdown
*/
package services
