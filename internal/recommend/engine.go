// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
	"github.com/tomtom215/cinematch/internal/recommend/resolver"
)

// Engine answers similarity queries over one snapshot. It is built once by
// NewEngine and never mutated, so all methods are safe for concurrent use
// without locking.
type Engine struct {
	config   Config
	logger   zerolog.Logger
	snapshot *Snapshot

	resolver *resolver.Resolver
	content  *algorithms.ContentBased
	collab   *algorithms.ItemCF

	itemIndex  map[int]int    // item id -> catalog index
	titleIndex map[string]int // title -> first catalog index

	builtAt       time.Time
	buildDuration time.Duration
}

// NewEngine validates snap and builds both similarity models. The content and
// collaborative models are prepared concurrently. On any error no engine is
// returned.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(ctx context.Context, snap *Snapshot, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	e := &Engine{
		config:     *cfg,
		logger:     logger.With().Str("component", "recommend").Str("snapshot", snap.Version).Logger(),
		snapshot:   snap,
		itemIndex:  make(map[int]int, len(snap.Items)),
		titleIndex: make(map[string]int, len(snap.Items)),
	}

	titles := make([]string, len(snap.Items))
	docs := make([]algorithms.Document, len(snap.Items))
	for i, it := range snap.Items {
		titles[i] = it.Title
		docs[i] = algorithms.Document{Title: it.Title, Genres: it.Genres}
		e.itemIndex[it.ID] = i
		if _, ok := e.titleIndex[it.Title]; !ok {
			e.titleIndex[it.Title] = i
		}
	}
	e.resolver = resolver.New(titles, cfg.FuzzyCutoff)

	entries := make([]algorithms.RatingEntry, len(snap.Ratings))
	for i, r := range snap.Ratings {
		entries[i] = algorithms.RatingEntry{UserID: r.UserID, ItemID: r.ItemID, Value: r.Value}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := algorithms.NewContentBased(gctx, docs, algorithms.ContentConfig{
			CandidateMultiplier: cfg.CandidateMultiplier,
		})
		if err != nil {
			return fmt.Errorf("build content model: %w", err)
		}
		e.content = c
		return nil
	})
	g.Go(func() error {
		m, err := algorithms.NewItemCF(gctx, entries, algorithms.ItemCFConfig{Workers: cfg.Workers})
		if err != nil {
			return fmt.Errorf("build collaborative model: %w", err)
		}
		e.collab = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.builtAt = time.Now()
	e.buildDuration = e.builtAt.Sub(start)

	e.logger.Info().
		Int("items", len(snap.Items)).
		Int("ratings", len(snap.Ratings)).
		Int("rated_items", e.collab.Len()).
		Int("vocabulary", e.content.VocabularySize()).
		Dur("duration", e.buildDuration).
		Msg("engine built")

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Version returns the snapshot version the engine was built from.
func (e *Engine) Version() string {
	return e.snapshot.Version
}

// Stats returns build statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		Version:        e.snapshot.Version,
		Items:          len(e.snapshot.Items),
		Ratings:        len(e.snapshot.Ratings),
		Users:          e.collab.Users(),
		RatedItems:     e.collab.Len(),
		RatingCells:    e.collab.Entries(),
		VocabularySize: e.content.VocabularySize(),
		BuiltAt:        e.builtAt,
		BuildDuration:  e.buildDuration,
	}
}

// Resolve maps a free-form query onto a canonical catalog title.
func (e *Engine) Resolve(query string) (resolver.Match, bool) {
	return e.resolver.Resolve(query)
}

// Item returns the catalog item with the given id.
func (e *Engine) Item(id int) (Item, bool) {
	i, ok := e.itemIndex[id]
	if !ok {
		return Item{}, false
	}
	return e.snapshot.Items[i], true
}

// ItemAt returns the catalog item at position i, as reported by
// resolver.Match.Index.
func (e *Engine) ItemAt(i int) Item {
	return e.snapshot.Items[i]
}

// ContentRecommend resolves query and returns up to
// CandidateMultiplier*topN content candidates. Unresolved queries yield nil.
func (e *Engine) ContentRecommend(query string, topN int) []Candidate {
	m, ok := e.resolver.Resolve(query)
	if !ok {
		return nil
	}
	return e.contentCandidates(m.Index, topN)
}

// CollaborativeRecommend returns up to topN collaborative candidates for a
// canonical title. Titles not in the catalog, and items without ratings,
// yield nil.
func (e *Engine) CollaborativeRecommend(title string, topN int) []Candidate {
	idx, ok := e.titleIndex[title]
	if !ok {
		return nil
	}
	return e.collaborativeCandidates(e.snapshot.Items[idx].ID, topN)
}

func (e *Engine) contentCandidates(doc, topN int) []Candidate {
	ns := e.content.Similar(doc, topN)
	if len(ns) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(ns))
	for _, n := range ns {
		out = append(out, Candidate{
			Item:         e.snapshot.Items[n.Index],
			Score:        n.Score,
			Source:       SourceContent,
			catalogIndex: n.Index,
		})
	}
	return out
}

func (e *Engine) collaborativeCandidates(itemID, topN int) []Candidate {
	ns := e.collab.Similar(itemID, topN)
	if len(ns) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(ns))
	for _, n := range ns {
		ci := e.itemIndex[e.collab.ItemID(n.Index)]
		out = append(out, Candidate{
			Item:         e.snapshot.Items[ci],
			Score:        n.Score,
			Source:       SourceCollaborative,
			catalogIndex: ci,
		})
	}
	return out
}

// Recommend runs the full hybrid pipeline. topN <= 0 uses the configured
// default and larger values are capped at MaxTopN. It never fails: empty
// outcomes are reported as NoResult.
func (e *Engine) Recommend(query string, topN int) Result {
	topN = e.config.ClampTopN(topN)

	m, ok := e.resolver.Resolve(query)
	if !ok {
		e.logger.Debug().Str("query", query).Msg("title unresolved")
		return NoResult{Query: query, Reason: ReasonUnresolved}
	}

	content := e.contentCandidates(m.Index, topN)
	if len(content) == 0 {
		return NoResult{Query: query, Resolved: m.Title, Reason: ReasonNoCandidates}
	}

	collab := e.CollaborativeRecommend(m.Title, topN)
	if len(collab) == 0 {
		if len(content) > topN {
			content = content[:topN]
		}
		e.logger.Debug().Str("resolved", m.Title).Msg("no collaborative data, returning content results")
		return Recommendations{Query: query, Resolved: m.Title, Stage: m.Stage, Path: PathContentOnly, Items: content}
	}

	fused := fuse(content, collab, m.Title, &e.config, topN)
	if len(fused) == 0 {
		return NoResult{Query: query, Resolved: m.Title, Reason: ReasonFilteredOut}
	}
	return Recommendations{Query: query, Resolved: m.Title, Stage: m.Stage, Path: PathHybrid, Items: fused}
}
