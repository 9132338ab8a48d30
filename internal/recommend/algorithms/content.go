// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"math"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Document is the metadata the content model reads for one catalog item.
type Document struct {
	Title  string
	Genres []string
}

// ContentConfig contains configuration for the content model.
type ContentConfig struct {
	// CandidateMultiplier scales top-N into the number of neighbours Similar
	// returns, leaving room for downstream filtering. Defaults to 2.
	CandidateMultiplier int
}

// ContentBased is a TF-IDF vector space over item "soups" (cleaned title
// followed by genres). Similarity is the dot product of L2-normalized
// vectors, which equals their cosine similarity.
//
// The model is immutable after NewContentBased and safe for concurrent use.
type ContentBased struct {
	config ContentConfig

	vocab    map[string]int
	idf      []float64
	vectors  []sparseVector
	postings [][]posting // term -> documents containing it
}

type sparseVector struct {
	terms   []int
	weights []float64
}

type posting struct {
	doc    int
	weight float64
}

// NewContentBased fits the vocabulary and weights over docs in catalog order.
func NewContentBased(ctx context.Context, docs []Document, cfg ContentConfig) (*ContentBased, error) {
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = 2
	}

	c := &ContentBased{
		config:  cfg,
		vocab:   make(map[string]int),
		vectors: make([]sparseVector, len(docs)),
	}

	// Term counts per document, in first-seen order.
	counts := make([]map[int]int, len(docs))
	var df []int
	for i, d := range docs {
		if i%1024 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		tf := make(map[int]int)
		for _, tok := range Tokenize(Soup(d.Title, d.Genres)) {
			id, ok := c.vocab[tok]
			if !ok {
				id = len(c.vocab)
				c.vocab[tok] = id
				df = append(df, 0)
			}
			if tf[id] == 0 {
				df[id]++
			}
			tf[id]++
		}
		counts[i] = tf
	}

	n := float64(len(docs))
	c.idf = make([]float64, len(df))
	for t, f := range df {
		c.idf[t] = math.Log((1+n)/(1+float64(f))) + 1
	}

	c.postings = make([][]posting, len(df))
	for i, tf := range counts {
		v := sparseVector{
			terms:   make([]int, 0, len(tf)),
			weights: make([]float64, 0, len(tf)),
		}
		for t := range tf {
			v.terms = append(v.terms, t)
		}
		slices.Sort(v.terms)
		var norm float64
		for _, t := range v.terms {
			w := float64(tf[t]) * c.idf[t]
			v.weights = append(v.weights, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range v.weights {
				v.weights[k] /= norm
			}
		}
		c.vectors[i] = v
		for k, t := range v.terms {
			c.postings[t] = append(c.postings[t], posting{doc: i, weight: v.weights[k]})
		}
	}

	return c, nil
}

// Len returns the number of documents.
func (c *ContentBased) Len() int {
	return len(c.vectors)
}

// VocabularySize returns the number of distinct weighted terms.
func (c *ContentBased) VocabularySize() int {
	return len(c.vocab)
}

// Similarity returns the cosine similarity of documents a and b in [0, 1].
// Out of range indices score 0.
func (c *ContentBased) Similarity(a, b int) float64 {
	if a < 0 || b < 0 || a >= len(c.vectors) || b >= len(c.vectors) {
		return 0
	}
	va, vb := c.vectors[a], c.vectors[b]
	wb := make(map[int]float64, len(vb.terms))
	for k, t := range vb.terms {
		wb[t] = vb.weights[k]
	}
	var dot float64
	for k, t := range va.terms {
		dot += va.weights[k] * wb[t]
	}
	return clampUnit(dot)
}

// Similar returns up to CandidateMultiplier*topN documents most similar to
// doc, excluding doc itself, ordered by descending score and then catalog
// index. Documents sharing no term with doc are scored 0 and still ranked,
// so the result is only short when the catalog is.
func (c *ContentBased) Similar(doc, topN int) []Neighbor {
	if doc < 0 || doc >= len(c.vectors) || topN <= 0 {
		return nil
	}

	scores := make([]float64, len(c.vectors))
	v := c.vectors[doc]
	for k, t := range v.terms {
		w := v.weights[k]
		for _, p := range c.postings[t] {
			scores[p.doc] += w * p.weight
		}
	}

	ns := make([]Neighbor, 0, len(scores)-1)
	for i, s := range scores {
		if i == doc {
			continue
		}
		ns = append(ns, Neighbor{Index: i, Score: clampUnit(s)})
	}
	return rankNeighbors(ns, c.config.CandidateMultiplier*topN)
}

// Soup builds the text indexed for an item: the title lower-cased with ':'
// and '-' removed, a space, then the genres joined by spaces and lower-cased.
func Soup(title string, genres []string) string {
	t := strings.NewReplacer(":", "", "-", "").Replace(title)
	lower := cases.Lower(language.Und)
	return lower.String(t) + " " + lower.String(strings.Join(genres, " "))
}

// Tokenize splits s into lower-case word tokens of at least two characters
// and drops English stop words. Word characters are letters, digits and '_'.
func Tokenize(s string) []string {
	var out []string
	lower := cases.Lower(language.Und)
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := s[start:end]
		start = -1
		if runeCountAtLeast(tok, 2) {
			tok = lower.String(tok)
			if _, stop := englishStopWords[tok]; !stop {
				out = append(out, tok)
			}
		}
	}
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return out
}

func runeCountAtLeast(s string, n int) bool {
	for range s {
		n--
		if n <= 0 {
			return true
		}
	}
	return false
}
