// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package websocket pushes snapshot notifications to connected clients.

A Hub owns the set of connected clients and fans out broadcast messages. It
runs as a supervised service; the snapshot broadcaster feeds it every
snapshot.published event so front ends can drop stale results and re-query.

# Message Format

Every frame is a JSON object:

	{"type": "snapshot_published", "data": {"version": "...", "items": 9742, ...}}

Clients may send {"type":"ping"} and receive {"type":"pong"}.

# Backpressure

Each client has a buffered send channel. A client whose buffer is full when
a broadcast arrives is disconnected rather than slowing down the others.

# Origins

Browsers always send Origin on websocket handshakes. Requests without one,
or from an origin outside server.cors_origins, are rejected.
*/
package websocket
