// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package resolver maps free-form title queries onto canonical catalog titles.
//
// Resolution is staged and short-circuits on the first stage that matches:
//
//  1. Exact, case-sensitive match.
//  2. Exact match after Unicode lower-casing of both sides.
//  3. Fuzzy match: the title with the highest SequenceMatcher ratio against
//     the raw query, accepted only at or above the cutoff. Ties keep the
//     earliest title in catalog order.
//  4. Substring match: among titles containing the query (case-insensitive),
//     the one with the fewest runes. Ties keep the earliest title.
//
// A Resolver is immutable after New and safe for concurrent use.
package resolver

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCutoff is the minimum fuzzy ratio for a match.
const DefaultCutoff = 0.6

// Stage identifies which resolution stage produced a match.
type Stage int

// Resolution stages, in the order they are tried.
const (
	StageNone Stage = iota
	StageExact
	StageCaseInsensitive
	StageFuzzy
	StageSubstring
)

// String returns the stage name used in logs, metrics and API responses.
func (s Stage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageCaseInsensitive:
		return "case_insensitive"
	case StageFuzzy:
		return "fuzzy"
	case StageSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Match is a successful resolution.
type Match struct {
	// Title is the canonical catalog title.
	Title string

	// Index is the catalog position of the first item carrying Title.
	Index int

	// Stage is the stage that matched.
	Stage Stage

	// Ratio is the fuzzy ratio for StageFuzzy matches, 1 otherwise.
	Ratio float64
}

// Resolver resolves queries against a fixed, ordered title list.
type Resolver struct {
	titles []string
	runes  [][]rune
	upper  []string
	exact  map[string]int
	lower  map[string]int
	cutoff float64
}

// New builds a resolver over titles in catalog order. A cutoff outside (0, 1]
// falls back to DefaultCutoff.
func New(titles []string, cutoff float64) *Resolver {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}

	lowerCaser := cases.Lower(language.Und)
	upperCaser := cases.Upper(language.Und)

	r := &Resolver{
		titles: titles,
		runes:  make([][]rune, len(titles)),
		upper:  make([]string, len(titles)),
		exact:  make(map[string]int, len(titles)),
		lower:  make(map[string]int, len(titles)),
		cutoff: cutoff,
	}
	for i, t := range titles {
		r.runes[i] = []rune(t)
		r.upper[i] = upperCaser.String(t)
		if _, ok := r.exact[t]; !ok {
			r.exact[t] = i
		}
		lt := lowerCaser.String(t)
		if _, ok := r.lower[lt]; !ok {
			r.lower[lt] = i
		}
	}
	return r
}

// Cutoff returns the effective fuzzy cutoff.
func (r *Resolver) Cutoff() float64 {
	return r.cutoff
}

// Resolve returns the canonical title for query. An empty query never resolves.
func (r *Resolver) Resolve(query string) (Match, bool) {
	if query == "" || len(r.titles) == 0 {
		return Match{}, false
	}

	if i, ok := r.exact[query]; ok {
		return Match{Title: r.titles[i], Index: i, Stage: StageExact, Ratio: 1}, true
	}

	if i, ok := r.lower[cases.Lower(language.Und).String(query)]; ok {
		return Match{Title: r.titles[i], Index: i, Stage: StageCaseInsensitive, Ratio: 1}, true
	}

	if i, ratio, ok := r.closest(query); ok {
		return Match{Title: r.titles[i], Index: r.exact[r.titles[i]], Stage: StageFuzzy, Ratio: ratio}, true
	}

	if i, ok := r.shortestContaining(query); ok {
		return Match{Title: r.titles[i], Index: r.exact[r.titles[i]], Stage: StageSubstring, Ratio: 1}, true
	}

	return Match{}, false
}

// closest runs the fuzzy stage. The cheap upper bounds are checked first so
// the full ratio is only computed for plausible titles.
func (r *Resolver) closest(query string) (best int, bestRatio float64, ok bool) {
	sm := newSequenceMatcher([]rune(query))
	best = -1
	for i, t := range r.runes {
		sm.setSeq1(t)
		if sm.realQuickRatio() < r.cutoff || sm.quickRatio() < r.cutoff {
			continue
		}
		ratio := sm.ratio()
		if ratio < r.cutoff {
			continue
		}
		if best < 0 || ratio > bestRatio {
			best, bestRatio = i, ratio
		}
	}
	return best, bestRatio, best >= 0
}

func (r *Resolver) shortestContaining(query string) (int, bool) {
	needle := cases.Upper(language.Und).String(query)
	best, bestLen := -1, 0
	for i, t := range r.upper {
		if !strings.Contains(t, needle) {
			continue
		}
		n := utf8.RuneCountInString(r.titles[i])
		if best < 0 || n < bestLen {
			best, bestLen = i, n
		}
	}
	return best, best >= 0
}
