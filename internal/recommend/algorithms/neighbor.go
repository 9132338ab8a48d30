// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"runtime"
	"slices"
)

// Neighbor is one entry of a similarity query result. Index is the position
// of the neighbour in the model's own ordering (catalog order for content,
// ascending item id for collaborative).
type Neighbor struct {
	Index int
	Score float64
}

// rankNeighbors sorts by descending score with ties broken by ascending
// Index, then truncates to n. n <= 0 keeps nothing.
func rankNeighbors(ns []Neighbor, n int) []Neighbor {
	if n <= 0 || len(ns) == 0 {
		return nil
	}
	slices.SortStableFunc(ns, func(a, b Neighbor) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Index - b.Index
		}
	})
	if len(ns) > n {
		ns = ns[:n]
	}
	return ns
}

// clampUnit pins floating point drift back into [0, 1].
func clampUnit(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func workerCount(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
