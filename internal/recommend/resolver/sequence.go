// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package resolver

// sequenceMatcher computes the Ratcliff/Obershelp "gestalt" similarity used by
// Python's difflib.SequenceMatcher, over runes. b is fixed (the query) and a
// is swapped per candidate title, mirroring set_seq2/set_seq1 usage.
//
// No junk predicate is used. When b has 200 or more runes, elements occurring
// in more than 1% of b are treated as popular and excluded from the index,
// exactly as difflib's autojunk heuristic does.
type sequenceMatcher struct {
	a, b       []rune
	b2j        map[rune][]int
	fullbcount map[rune]int
}

const autojunkMinLen = 200

func newSequenceMatcher(b []rune) *sequenceMatcher {
	m := &sequenceMatcher{b: b}
	m.b2j = make(map[rune][]int, len(b))
	for i, r := range b {
		m.b2j[r] = append(m.b2j[r], i)
	}
	if n := len(b); n >= autojunkMinLen {
		ntest := n/100 + 1
		for r, idxs := range m.b2j {
			if len(idxs) > ntest {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

func (m *sequenceMatcher) setSeq1(a []rune) {
	m.a = a
}

// ratio returns 2*M/T where M is the number of matched runes and T the total
// rune count of both sequences. Two empty sequences have ratio 1.
func (m *sequenceMatcher) ratio() float64 {
	return calculateRatio(m.matches(), len(m.a)+len(m.b))
}

// quickRatio is an upper bound on ratio based on rune multiset intersection.
func (m *sequenceMatcher) quickRatio() float64 {
	if m.fullbcount == nil {
		m.fullbcount = make(map[rune]int, len(m.b))
		for _, r := range m.b {
			m.fullbcount[r]++
		}
	}
	avail := make(map[rune]int, len(m.a))
	matches := 0
	for _, r := range m.a {
		n, ok := avail[r]
		if !ok {
			n = m.fullbcount[r]
		}
		avail[r] = n - 1
		if n > 0 {
			matches++
		}
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// realQuickRatio is an upper bound on quickRatio based on lengths alone.
func (m *sequenceMatcher) realQuickRatio() float64 {
	la, lb := len(m.a), len(m.b)
	return calculateRatio(min(la, lb), la+lb)
}

func calculateRatio(matches, length int) float64 {
	if length == 0 {
		return 1.0
	}
	return 2.0 * float64(matches) / float64(length)
}

// matches sums the sizes of all matching blocks. Blocks are discovered by
// recursively taking the longest match and splitting the remaining ranges
// on either side of it.
func (m *sequenceMatcher) matches() int {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	total := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.findLongestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// findLongestMatch returns (i, j, k) such that a[i:i+k] == b[j:j+k] is the
// longest matching block in a[alo:ahi] and b[blo:bhi]. Among equal lengths the
// one starting earliest in a wins, then earliest in b.
func (m *sequenceMatcher) findLongestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	// Popular elements were left out of b2j; grow the match over equal
	// neighbours so they still count.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}
