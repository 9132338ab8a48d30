// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend/resolver"
)

var (
	// ErrMalformedSnapshot is returned when a snapshot violates a data
	// invariant. No engine is built from such a snapshot.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrEmptyCatalog is returned when a snapshot has no items. It is always
	// wrapped together with ErrMalformedSnapshot.
	ErrEmptyCatalog = errors.New("catalog has no items")
)

// Item represents a catalog entry.
type Item struct {
	// ID is the unique movie identifier.
	ID int `json:"movieId"`

	// Title is the display title, usually suffixed with the release year.
	Title string `json:"title"`

	// Genres lists genre labels in source order. May be empty.
	Genres []string `json:"genres"`
}

// Rating is a single user rating of an item.
type Rating struct {
	UserID int     `json:"userId"`
	ItemID int     `json:"movieId"`
	Value  float64 `json:"rating"`
}

// Snapshot is the immutable input to an engine build.
type Snapshot struct {
	// Items is the catalog in source order. Catalog order breaks ranking ties.
	Items []Item

	// Ratings may be empty, in which case every item is cold.
	Ratings []Rating

	// Version identifies the snapshot contents, typically a content hash.
	Version string

	// LoadedAt is when the snapshot was read from storage.
	LoadedAt time.Time
}

// Validate checks the snapshot invariants. Every failure wraps
// ErrMalformedSnapshot.
func (s *Snapshot) Validate() error {
	if s == nil || len(s.Items) == 0 {
		return fmt.Errorf("%w: %w", ErrMalformedSnapshot, ErrEmptyCatalog)
	}

	ids := make(map[int]struct{}, len(s.Items))
	for i, it := range s.Items {
		if _, dup := ids[it.ID]; dup {
			return fmt.Errorf("%w: duplicate item id %d at row %d", ErrMalformedSnapshot, it.ID, i)
		}
		ids[it.ID] = struct{}{}
	}

	for i, r := range s.Ratings {
		if _, ok := ids[r.ItemID]; !ok {
			return fmt.Errorf("%w: rating %d references unknown item %d", ErrMalformedSnapshot, i, r.ItemID)
		}
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) || r.Value < 0 {
			return fmt.Errorf("%w: rating %d has invalid value %v", ErrMalformedSnapshot, i, r.Value)
		}
	}

	return nil
}

// Source identifies which engine produced a candidate.
type Source int

const (
	// SourceContent marks candidates from the content engine.
	SourceContent Source = 1 << iota
	// SourceCollaborative marks candidates from the collaborative engine.
	SourceCollaborative
)

// String returns "content", "collaborative", or "hybrid" when both
// engines contributed.
func (s Source) String() string {
	switch s {
	case SourceContent:
		return "content"
	case SourceCollaborative:
		return "collaborative"
	case SourceContent | SourceCollaborative:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Candidate is a scored item produced by either engine or by fusion.
type Candidate struct {
	Item   Item
	Score  float64
	Source Source

	// catalogIndex orders ties.
	catalogIndex int
}

// Path records how a result list was assembled.
type Path int

const (
	// PathHybrid means both engines contributed and fusion was applied.
	PathHybrid Path = iota
	// PathContentOnly means the item had no ratings and only content
	// candidates were returned, unweighted and unfiltered.
	PathContentOnly
)

// String returns the path name.
func (p Path) String() string {
	if p == PathContentOnly {
		return "content_only"
	}
	return "hybrid"
}

// Reason explains an empty result.
type Reason string

// Reasons for an empty result.
const (
	ReasonUnresolved   Reason = "unresolved"
	ReasonNoCandidates Reason = "no_candidates"
	ReasonFilteredOut  Reason = "filtered_out"
)

// Result is either Recommendations or NoResult.
type Result interface {
	isResult()
}

// Recommendations is a non-empty ranked list.
type Recommendations struct {
	Query    string
	Resolved string
	Stage    resolver.Stage
	Path     Path
	Items    []Candidate
}

// NoResult is returned instead of an empty list. Resolved is empty when
// Reason is ReasonUnresolved.
type NoResult struct {
	Query    string
	Resolved string
	Reason   Reason
}

func (Recommendations) isResult() {}
func (NoResult) isResult()        {}

// Stats describes a built engine.
type Stats struct {
	Version        string        `json:"version"`
	Items          int           `json:"items"`
	Ratings        int           `json:"ratings"`
	Users          int           `json:"users"`
	RatedItems     int           `json:"rated_items"`
	RatingCells    int           `json:"rating_cells"`
	VocabularySize int           `json:"vocabulary_size"`
	BuiltAt        time.Time     `json:"built_at"`
	BuildDuration  time.Duration `json:"build_duration_ns"`
}
