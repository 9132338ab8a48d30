// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package cache stores rendered recommendation responses.
//
// Two Store implementations are provided:
//
//   - MemoryStore: bounded LRU with lazy TTL expiry, O(1) Get and Set.
//   - BadgerStore: BadgerDB-backed, survives restarts, TTL enforced by Badger.
//
// Keys built with Key embed the snapshot version, and the whole store is
// purged whenever a new snapshot is published.
package cache
