// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func thorCatalog() []Document {
	return []Document{
		{Title: "Thor (2011)", Genres: []string{"Action", "Adventure", "Fantasy", "IMAX"}},
		{Title: "Thor: The Dark World (2013)", Genres: []string{"Action", "Adventure", "Fantasy", "IMAX"}},
		{Title: "Thor: Ragnarok (2017)", Genres: []string{"Action", "Adventure", "Sci-Fi"}},
		{Title: "Harry Potter and the Sorcerer's Stone (2001)", Genres: []string{"Adventure", "Children", "Fantasy"}},
		{Title: "The Notebook (2004)", Genres: []string{"Drama", "Romance"}},
		{Title: "Her", Genres: []string{"(no genres listed)"}},
	}
}

func TestSoup(t *testing.T) {
	got := Soup("Thor: The Dark-World", []string{"Action", "Sci-Fi"})
	if want := "thor the darkworld action sci-fi"; got != want {
		t.Errorf("Soup() = %q, want %q", got, want)
	}

	// Word-final capital sigma lowers to the final form.
	if got, want := Soup("ΟΔΥΣΣΕΑΣ", []string{"Drama"}), "οδυσσεας drama"; got != want {
		t.Errorf("Soup() = %q, want %q", got, want)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "drops stop words and short tokens", in: "the lord of a ring x", want: []string{"lord", "ring"}},
		{name: "splits on punctuation", in: "sorcerer's stone (2001) sci-fi", want: []string{"sorcerer", "stone", "2001", "sci", "fi"}},
		{name: "keeps underscores and unicode letters", in: "amélie foo_bar", want: []string{"amélie", "foo_bar"}},
		{name: "all stop words", in: "it is the", want: nil},
		{name: "unicode upper case", in: "AMÉLIE ΟΔΥΣΣΕΑΣ", want: []string{"amélie", "οδυσσεας"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentBased_Similarity(t *testing.T) {
	c, err := NewContentBased(context.Background(), thorCatalog(), ContentConfig{})
	if err != nil {
		t.Fatalf("NewContentBased() error = %v", err)
	}
	if c.VocabularySize() != 25 {
		t.Errorf("VocabularySize() = %d, want 25", c.VocabularySize())
	}

	tests := []struct {
		a, b int
		want float64
	}{
		{0, 0, 1},
		{0, 1, 0.566198},
		{0, 2, 0.305635},
		{0, 3, 0.170924},
		{1, 2, 0.243331},
		{2, 3, 0.058434},
		{0, 4, 0},
		{4, 5, 0},
	}
	for _, tt := range tests {
		if got := c.Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("Similarity(%d, %d) = %.6f, want %.6f", tt.a, tt.b, got, tt.want)
		}
		if got, rev := c.Similarity(tt.a, tt.b), c.Similarity(tt.b, tt.a); math.Abs(got-rev) > 1e-12 {
			t.Errorf("Similarity not symmetric for (%d, %d): %v vs %v", tt.a, tt.b, got, rev)
		}
	}
}

func TestContentBased_Similar(t *testing.T) {
	c, err := NewContentBased(context.Background(), thorCatalog(), ContentConfig{})
	if err != nil {
		t.Fatalf("NewContentBased() error = %v", err)
	}

	got := c.Similar(0, 2)
	wantIdx := []int{1, 2, 3, 4}
	if len(got) != len(wantIdx) {
		t.Fatalf("Similar() returned %d neighbours, want %d", len(got), len(wantIdx))
	}
	for k, n := range got {
		if n.Index != wantIdx[k] {
			t.Errorf("Similar()[%d].Index = %d, want %d", k, n.Index, wantIdx[k])
		}
		if n.Index == 0 {
			t.Error("Similar() returned the query document")
		}
		if n.Score < 0 || n.Score > 1 {
			t.Errorf("score %v outside [0, 1]", n.Score)
		}
	}

	if again := c.Similar(0, 2); !reflect.DeepEqual(got, again) {
		t.Errorf("Similar() not deterministic: %v vs %v", got, again)
	}
}

func TestContentBased_Edges(t *testing.T) {
	docs := []Document{
		{Title: "It"},
		{Title: "It"},
		{Title: "Heat (1995)", Genres: []string{"Action"}},
	}
	c, err := NewContentBased(context.Background(), docs, ContentConfig{CandidateMultiplier: 1})
	if err != nil {
		t.Fatalf("NewContentBased() error = %v", err)
	}

	// "It" has only stop words, so its vector is zero and matches nothing,
	// not even an identical title.
	if got := c.Similarity(0, 0); got != 0 {
		t.Errorf("zero vector self similarity = %v, want 0", got)
	}
	for _, n := range c.Similar(0, 5) {
		if n.Index == 0 {
			t.Error("query document returned")
		}
		if n.Score != 0 {
			t.Errorf("zero vector neighbour score = %v, want 0", n.Score)
		}
	}
	if got := c.Similar(1, 1); len(got) != 1 || got[0].Index != 0 {
		t.Errorf("tie at zero should keep catalog order, got %v", got)
	}

	if c.Similar(-1, 1) != nil || c.Similar(3, 1) != nil || c.Similar(0, 0) != nil {
		t.Error("out of range query should return nil")
	}
	if c.Similarity(0, 99) != 0 {
		t.Error("out of range Similarity should be 0")
	}
}

func TestContentBased_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewContentBased(ctx, thorCatalog(), ContentConfig{}); err == nil {
		t.Error("expected error for canceled context")
	}
}
