// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import "slices"

// fuse merges both candidate lists. Scores are weighted per source and summed
// per item id, then items at or below MinScore and items titled like the
// query are dropped. The rest are ranked by score, ties by catalog order.
func fuse(content, collab []Candidate, resolvedTitle string, cfg *Config, topN int) []Candidate {
	merged := make([]Candidate, 0, len(content)+len(collab))
	pos := make(map[int]int, len(content)+len(collab))

	add := func(cs []Candidate, weight float64) {
		for _, c := range cs {
			w := c.Score * weight
			if i, ok := pos[c.Item.ID]; ok {
				merged[i].Score += w
				merged[i].Source |= c.Source
				continue
			}
			pos[c.Item.ID] = len(merged)
			c.Score = w
			merged = append(merged, c)
		}
	}
	add(content, cfg.ContentWeight)
	add(collab, cfg.CollaborativeWeight)

	kept := merged[:0]
	for _, c := range merged {
		if c.Score > cfg.MinScore && c.Item.Title != resolvedTitle {
			kept = append(kept, c)
		}
	}

	slices.SortStableFunc(kept, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.catalogIndex - b.catalogIndex
		}
	})

	if len(kept) > topN {
		kept = kept[:topN]
	}
	return kept
}
