// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"math"
	"testing"
)

func TestSnapshot_Validate(t *testing.T) {
	items := []Item{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}

	tests := []struct {
		name      string
		snap      *Snapshot
		wantErr   bool
		wantEmpty bool
	}{
		{name: "valid", snap: &Snapshot{Items: items, Ratings: []Rating{{UserID: 1, ItemID: 2, Value: 3.5}}}},
		{name: "valid without ratings", snap: &Snapshot{Items: items}},
		{name: "zero rating allowed", snap: &Snapshot{Items: items, Ratings: []Rating{{UserID: 1, ItemID: 1, Value: 0}}}},
		{name: "nil snapshot", snap: nil, wantErr: true, wantEmpty: true},
		{name: "empty catalog", snap: &Snapshot{}, wantErr: true, wantEmpty: true},
		{name: "duplicate id", snap: &Snapshot{Items: []Item{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}}}, wantErr: true},
		{name: "unknown item", snap: &Snapshot{Items: items, Ratings: []Rating{{UserID: 1, ItemID: 3, Value: 4}}}, wantErr: true},
		{name: "NaN rating", snap: &Snapshot{Items: items, Ratings: []Rating{{UserID: 1, ItemID: 1, Value: math.NaN()}}}, wantErr: true},
		{name: "infinite rating", snap: &Snapshot{Items: items, Ratings: []Rating{{UserID: 1, ItemID: 1, Value: math.Inf(1)}}}, wantErr: true},
		{name: "negative rating", snap: &Snapshot{Items: items, Ratings: []Rating{{UserID: 1, ItemID: 1, Value: -1}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("error %v does not wrap ErrMalformedSnapshot", err)
			}
			if errors.Is(err, ErrEmptyCatalog) != tt.wantEmpty {
				t.Errorf("errors.Is(err, ErrEmptyCatalog) = %v, want %v", !tt.wantEmpty, tt.wantEmpty)
			}
		})
	}
}

func TestSource_String(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{SourceContent, "content"},
		{SourceCollaborative, "collaborative"},
		{SourceContent | SourceCollaborative, "hybrid"},
		{Source(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("Source(%d).String() = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestPath_String(t *testing.T) {
	if PathHybrid.String() != "hybrid" || PathContentOnly.String() != "content_only" {
		t.Errorf("unexpected path names %q, %q", PathHybrid, PathContentOnly)
	}
}
