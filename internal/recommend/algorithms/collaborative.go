// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"math"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// RatingEntry is one (user, item, value) observation fed to the
// collaborative model.
type RatingEntry struct {
	UserID int
	ItemID int
	Value  float64
}

// ItemCFConfig contains configuration for item-item collaborative filtering.
type ItemCFConfig struct {
	// Workers is the number of goroutines computing similarity rows.
	// Zero uses GOMAXPROCS.
	Workers int
}

// ItemCF holds a dense item-item cosine similarity matrix over the
// user-item rating matrix, with missing ratings treated as 0. Only items that
// received at least one rating have a row; they are ordered by ascending
// item id.
//
// The matrix is symmetric so only the upper triangle is stored.
// The model is immutable after NewItemCF and safe for concurrent use.
type ItemCF struct {
	itemIDs   []int
	itemIndex map[int]int
	users     int
	entries   int
	sim       []float64 // packed upper triangle, row-major
}

type userValue struct {
	user  int
	value float64
}

type itemValue struct {
	item  int
	value float64
}

// NewItemCF builds the similarity matrix. Duplicate (user, item) ratings are
// averaged before similarities are computed.
func NewItemCF(ctx context.Context, ratings []RatingEntry, cfg ItemCFConfig) (*ItemCF, error) {
	type key struct{ user, item int }
	type acc struct {
		sum float64
		n   int
	}

	cells := make(map[key]*acc, len(ratings))
	userIndex := make(map[int]int)
	itemSet := make(map[int]struct{})
	for _, r := range ratings {
		k := key{r.UserID, r.ItemID}
		a, ok := cells[k]
		if !ok {
			a = &acc{}
			cells[k] = a
		}
		a.sum += r.Value
		a.n++
		if _, ok := userIndex[r.UserID]; !ok {
			userIndex[r.UserID] = len(userIndex)
		}
		itemSet[r.ItemID] = struct{}{}
	}

	m := &ItemCF{
		itemIDs:   make([]int, 0, len(itemSet)),
		itemIndex: make(map[int]int, len(itemSet)),
		users:     len(userIndex),
		entries:   len(cells),
	}
	for id := range itemSet {
		m.itemIDs = append(m.itemIDs, id)
	}
	slices.Sort(m.itemIDs)
	for i, id := range m.itemIDs {
		m.itemIndex[id] = i
	}

	n := len(m.itemIDs)
	itemUsers := make([][]userValue, n)
	userItems := make([][]itemValue, len(userIndex))
	for k, a := range cells {
		i := m.itemIndex[k.item]
		u := userIndex[k.user]
		v := a.sum / float64(a.n)
		itemUsers[i] = append(itemUsers[i], userValue{user: u, value: v})
		userItems[u] = append(userItems[u], itemValue{item: i, value: v})
	}
	for i := range itemUsers {
		slices.SortFunc(itemUsers[i], func(a, b userValue) int { return a.user - b.user })
	}
	for u := range userItems {
		slices.SortFunc(userItems[u], func(a, b itemValue) int { return a.item - b.item })
	}

	norms := make([]float64, n)
	for i, uvs := range itemUsers {
		var s float64
		for _, uv := range uvs {
			s += uv.value * uv.value
		}
		norms[i] = math.Sqrt(s)
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	m.sim = make([]float64, n*(n+1)/2)

	workers := min(workerCount(cfg.Workers), max(n, 1))
	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			dots := make([]float64, n)
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return nil
				}
				if ContextCancelled(gctx) {
					return gctx.Err()
				}
				m.computeRow(i, itemUsers[i], userItems, norms, dots)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m, nil
}

// computeRow fills row i of the upper triangle. dots is scratch space of
// length n owned by the calling worker.
func (m *ItemCF) computeRow(i int, users []userValue, userItems [][]itemValue, norms, dots []float64) {
	n := len(m.itemIDs)
	clear(dots[i:])
	for _, uv := range users {
		items := userItems[uv.user]
		start, _ := slices.BinarySearchFunc(items, i, func(a itemValue, t int) int { return a.item - t })
		for _, iv := range items[start:] {
			dots[iv.item] += uv.value * iv.value
		}
	}

	row := m.sim[m.offset(i, i) : m.offset(i, i)+n-i]
	for j := i; j < n; j++ {
		if norms[i] == 0 || norms[j] == 0 {
			row[j-i] = 0
			continue
		}
		if j == i {
			row[0] = 1
			continue
		}
		row[j-i] = clampUnit(dots[j] / (norms[i] * norms[j]))
	}
}

// offset returns the packed position of (i, j) for i <= j.
func (m *ItemCF) offset(i, j int) int {
	n := len(m.itemIDs)
	return i*n - i*(i-1)/2 + (j - i)
}

// Len returns the number of rated items.
func (m *ItemCF) Len() int {
	return len(m.itemIDs)
}

// Users returns the number of distinct users.
func (m *ItemCF) Users() int {
	return m.users
}

// Entries returns the number of distinct (user, item) cells.
func (m *ItemCF) Entries() int {
	return m.entries
}

// ItemID returns the item id at matrix position idx.
func (m *ItemCF) ItemID(idx int) int {
	return m.itemIDs[idx]
}

// IndexOf returns the matrix position of itemID, false if it was never rated.
func (m *ItemCF) IndexOf(itemID int) (int, bool) {
	i, ok := m.itemIndex[itemID]
	return i, ok
}

// Similarity returns the cosine similarity between matrix positions a and b.
func (m *ItemCF) Similarity(a, b int) float64 {
	n := len(m.itemIDs)
	if a < 0 || b < 0 || a >= n || b >= n {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return m.sim[m.offset(a, b)]
}

// Similar returns the topN items most similar to itemID, excluding itemID,
// ordered by descending score and then ascending item id. Items with zero
// similarity are included. Unrated items yield nil.
func (m *ItemCF) Similar(itemID, topN int) []Neighbor {
	i, ok := m.itemIndex[itemID]
	if !ok || topN <= 0 {
		return nil
	}
	n := len(m.itemIDs)
	ns := make([]Neighbor, 0, n-1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		ns = append(ns, Neighbor{Index: j, Score: m.Similarity(i, j)})
	}
	return rankNeighbors(ns, topN)
}
