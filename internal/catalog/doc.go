// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package catalog loads recommendation snapshots from the MovieLens CSV
// layout.
//
// Two loaders implement the same contract:
//
//   - CSVLoader streams both files with encoding/csv.
//   - DuckDBLoader reads them through DuckDB's read_csv in an in-memory
//     database, which is faster on large rating files.
//
// Both return a validated *recommend.Snapshot whose Version is the SHA-256
// fingerprint of the two files, so unchanged files always map to the same
// version.
package catalog
