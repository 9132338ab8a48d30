// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend implements the hybrid movie recommendation engine.
//
// # Architecture
//
// A query flows through three stages:
//
//   - Title resolution (package resolver): exact, case-insensitive, fuzzy,
//     then substring matching against catalog titles.
//   - Candidate generation (package algorithms): TF-IDF content similarity
//     and item-item collaborative similarity, computed independently.
//   - Fusion: weighted sum per item (0.6 content, 0.4 collaborative by
//     default), a strict 0.10 threshold, removal of the query title, and a
//     stable ranking with ties in catalog order.
//
// Items without ratings skip fusion entirely and return content candidates
// as-is.
//
// # Lifecycle
//
// An Engine is built from a Snapshot by NewEngine and is immutable. Rebuilds
// construct a new Engine and install it with Publisher.Publish; readers call
// Publisher.Current and never block.
//
// # Usage
//
//	engine, err := recommend.NewEngine(ctx, snapshot, recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	switch r := engine.Recommend("Thor", 10).(type) {
//	case recommend.Recommendations:
//	    // r.Items
//	case recommend.NoResult:
//	    // r.Reason
//	}
package recommend
