// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package algorithms implements the two similarity models behind the hybrid
// recommender.
//
// # Models
//
//   - ContentBased: TF-IDF vectors over a "soup" of cleaned title and genres,
//     compared by cosine similarity.
//   - ItemCF: item-item cosine similarity over the user-item rating matrix,
//     with unrated cells treated as 0.
//
// Both models are built once from an immutable snapshot and never mutated
// afterwards, so queries need no locking. Rebuilding is done by constructing
// a new model.
//
// # Indices
//
// The package works on positions rather than domain types. ContentBased
// positions are catalog order. ItemCF positions are ascending item id over
// rated items only; use IndexOf and ItemID to translate.
//
// # Scores
//
// Every score is clamped to [0, 1]. Query results never contain the query
// item itself and are ordered by descending score, ties by ascending
// position.
package algorithms
