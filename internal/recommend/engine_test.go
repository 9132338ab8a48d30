// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend/resolver"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Version: "test",
		Items: []Item{
			{ID: 1, Title: "Thor (2011)", Genres: []string{"Action", "Adventure", "Fantasy", "IMAX"}},
			{ID: 2, Title: "Thor: The Dark World (2013)", Genres: []string{"Action", "Adventure", "Fantasy", "IMAX"}},
			{ID: 3, Title: "Thor: Ragnarok (2017)", Genres: []string{"Action", "Adventure", "Sci-Fi"}},
			{ID: 4, Title: "Harry Potter and the Sorcerer's Stone (2001)", Genres: []string{"Adventure", "Children", "Fantasy"}},
			{ID: 5, Title: "The Notebook (2004)", Genres: []string{"Drama", "Romance"}},
			{ID: 6, Title: "Her", Genres: []string{"(no genres listed)"}},
			{ID: 7, Title: "Cold Case (2020)", Genres: []string{"Drama"}},
		},
		Ratings: []Rating{
			{UserID: 1, ItemID: 1, Value: 5}, {UserID: 1, ItemID: 2, Value: 4}, {UserID: 1, ItemID: 3, Value: 4},
			{UserID: 2, ItemID: 1, Value: 4}, {UserID: 2, ItemID: 3, Value: 5}, {UserID: 2, ItemID: 5, Value: 2},
			{UserID: 3, ItemID: 4, Value: 5}, {UserID: 3, ItemID: 5, Value: 4}, {UserID: 3, ItemID: 1, Value: 1},
			{UserID: 4, ItemID: 5, Value: 5}, {UserID: 4, ItemID: 6, Value: 3},
		},
	}
}

func newTestEngine(t *testing.T, snap *Snapshot) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), snap, DefaultConfig(), logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

type scored struct {
	id    int
	score float64
}

func itemsOf(t *testing.T, r Result) []Candidate {
	t.Helper()
	recs, ok := r.(Recommendations)
	if !ok {
		t.Fatalf("expected Recommendations, got %#v", r)
	}
	if len(recs.Items) == 0 {
		t.Fatal("Recommendations must not be empty")
	}
	return recs.Items
}

func checkScored(t *testing.T, got []Candidate, want []scored) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Item.ID != w.id {
			t.Errorf("item[%d].ID = %d, want %d", i, got[i].Item.ID, w.id)
		}
		if math.Abs(got[i].Score-w.score) > 1e-6 {
			t.Errorf("item[%d].Score = %.6f, want %.6f", i, got[i].Score, w.score)
		}
	}
}

func TestEngine_RecommendHybrid(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	tests := []struct {
		name      string
		query     string
		wantStage resolver.Stage
	}{
		{name: "exact title", query: "Thor (2011)", wantStage: resolver.StageExact},
		{name: "case insensitive", query: "thor (2011)", wantStage: resolver.StageCaseInsensitive},
		{name: "fuzzy typo", query: "Thorr (2011)", wantStage: resolver.StageFuzzy},
	}

	// 0.6 * content + 0.4 * collaborative, summed per item.
	want := []scored{
		{id: 2, score: 0.654890},
		{id: 3, score: 0.575025},
		{id: 4, score: 0.168458},
		{id: 5, score: 0.110410},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.Recommend(tt.query, 10)
			recs, ok := r.(Recommendations)
			if !ok {
				t.Fatalf("expected Recommendations, got %#v", r)
			}
			if recs.Resolved != "Thor (2011)" {
				t.Errorf("Resolved = %q", recs.Resolved)
			}
			if recs.Stage != tt.wantStage {
				t.Errorf("Stage = %v, want %v", recs.Stage, tt.wantStage)
			}
			if recs.Path != PathHybrid {
				t.Errorf("Path = %v, want hybrid", recs.Path)
			}
			checkScored(t, recs.Items, want)
			for _, c := range recs.Items {
				if c.Item.Title == recs.Resolved {
					t.Error("resolved title returned in its own results")
				}
			}
			if recs.Items[0].Source != SourceContent|SourceCollaborative {
				t.Errorf("Source = %v, want hybrid", recs.Items[0].Source)
			}
		})
	}
}

func TestEngine_RecommendTruncates(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	items := itemsOf(t, e.Recommend("Thor (2011)", 2))
	checkScored(t, items, []scored{{id: 2, score: 0.654890}, {id: 3, score: 0.575025}})
}

func TestEngine_RecommendColdItem(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	r := e.Recommend("Cold Case (2020)", 2)
	recs, ok := r.(Recommendations)
	if !ok {
		t.Fatalf("expected Recommendations, got %#v", r)
	}
	if recs.Path != PathContentOnly {
		t.Errorf("Path = %v, want content_only", recs.Path)
	}
	// Raw content scores: no weighting and no threshold, zeros included.
	checkScored(t, recs.Items, []scored{{id: 5, score: 0.186781}, {id: 1, score: 0}})
	for _, c := range recs.Items {
		if c.Source != SourceContent {
			t.Errorf("Source = %v, want content", c.Source)
		}
	}
}

func TestEngine_RecommendCollaborativeOnlySignal(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	// "Her" shares no terms with anything; only the co-rated Notebook clears
	// the threshold (0.4 * 0.745356).
	items := itemsOf(t, e.Recommend("Her", 10))
	checkScored(t, items, []scored{{id: 5, score: 0.298142}})
}

func TestEngine_RecommendNoResult(t *testing.T) {
	tests := []struct {
		name       string
		snap       *Snapshot
		query      string
		wantReason Reason
	}{
		{
			name:       "unresolved",
			snap:       testSnapshot(),
			query:      "Zzyzx Qqq Vvv",
			wantReason: ReasonUnresolved,
		},
		{
			name:       "empty query",
			snap:       testSnapshot(),
			query:      "",
			wantReason: ReasonUnresolved,
		},
		{
			name:       "single item catalog has no candidates",
			snap:       &Snapshot{Items: []Item{{ID: 1, Title: "Alone"}}},
			query:      "Alone",
			wantReason: ReasonNoCandidates,
		},
		{
			name: "everything below threshold",
			snap: &Snapshot{
				Items: []Item{
					{ID: 1, Title: "Alpha", Genres: []string{"Drama"}},
					{ID: 2, Title: "Bravo", Genres: []string{"Comedy"}},
				},
				Ratings: []Rating{{UserID: 1, ItemID: 1, Value: 5}, {UserID: 2, ItemID: 2, Value: 5}},
			},
			query:      "Alpha",
			wantReason: ReasonFilteredOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.snap)
			r := e.Recommend(tt.query, 10)
			nr, ok := r.(NoResult)
			if !ok {
				t.Fatalf("expected NoResult, got %#v", r)
			}
			if nr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", nr.Reason, tt.wantReason)
			}
			if nr.Query != tt.query {
				t.Errorf("Query = %q, want %q", nr.Query, tt.query)
			}
		})
	}
}

func TestEngine_RecommendIdempotent(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	first := e.Recommend("thor", 5)
	for i := 0; i < 5; i++ {
		if again := e.Recommend("thor", 5); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %#v vs %#v", i, first, again)
		}
	}

	// A second engine over the same snapshot gives the same answer.
	other := newTestEngine(t, testSnapshot())
	if again := other.Recommend("thor", 5); !reflect.DeepEqual(first, again) {
		t.Fatalf("rebuilt engine differs: %#v vs %#v", first, again)
	}
}

func TestEngine_ContentAndCollaborative(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	content := e.ContentRecommend("Thor", 2)
	if len(content) != 4 {
		t.Fatalf("ContentRecommend returned %d, want 2*topN = 4", len(content))
	}
	if content[0].Item.ID != 2 || math.Abs(content[0].Score-0.577138) > 1e-6 {
		t.Errorf("content[0] = %+v", content[0])
	}
	if e.ContentRecommend("Zzyzx Qqq Vvv", 2) != nil {
		t.Error("unresolved content query should be nil")
	}

	collab := e.CollaborativeRecommend("Thor (2011)", 2)
	checkScored(t, collab, []scored{{id: 3, score: 0.963925}, {id: 2, score: 0.771517}})
	if e.CollaborativeRecommend("Cold Case (2020)", 2) != nil {
		t.Error("unrated item should return nil")
	}
	if e.CollaborativeRecommend("thor (2011)", 2) != nil {
		t.Error("collaborative lookup takes canonical titles only")
	}
}

func TestEngine_Stats(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	s := e.Stats()
	if s.Items != 7 || s.Ratings != 11 || s.Users != 4 || s.RatedItems != 6 || s.RatingCells != 11 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.Version != "test" || e.Version() != "test" {
		t.Errorf("Version = %q", s.Version)
	}
	if _, ok := e.Item(7); !ok {
		t.Error("Item(7) missing")
	}
	if _, ok := e.Item(99); ok {
		t.Error("Item(99) should be missing")
	}
}

func TestNewEngine_Errors(t *testing.T) {
	logger := logging.NewTestLogger(io.Discard)

	if _, err := NewEngine(context.Background(), &Snapshot{}, nil, logger); !errors.Is(err, ErrMalformedSnapshot) {
		t.Errorf("empty snapshot error = %v, want ErrMalformedSnapshot", err)
	}

	bad := DefaultConfig()
	bad.MinScore = 2
	if _, err := NewEngine(context.Background(), testSnapshot(), bad, logger); err == nil {
		t.Error("expected config validation error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine(ctx, testSnapshot(), nil, logger); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled build error = %v, want context.Canceled", err)
	}
}

func TestPublisher(t *testing.T) {
	p := NewPublisher()
	if p.Ready() {
		t.Error("new publisher should not be ready")
	}
	if _, err := p.Current(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Current() error = %v, want ErrNotReady", err)
	}

	first := newTestEngine(t, testSnapshot())
	if prev := p.Publish(first); prev != nil {
		t.Error("first publish should replace nothing")
	}
	second := newTestEngine(t, testSnapshot())
	if prev := p.Publish(second); prev != first {
		t.Error("second publish should return the first engine")
	}
	if cur, err := p.Current(); err != nil || cur != second {
		t.Errorf("Current() = %p, %v", cur, err)
	}
}
