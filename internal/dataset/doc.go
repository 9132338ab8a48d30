// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package dataset downloads and unpacks the MovieLens archive the catalog is
// loaded from.
//
// Downloads go through a circuit breaker and are retried at a fixed pace.
// The data directory is locked with an advisory file lock while a fetch runs,
// and the archive's top-level directory is flattened so movies.csv and
// ratings.csv land directly in the data directory.
package dataset
