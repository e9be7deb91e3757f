package retrieve

import "sort"

// closeMatches returns up to n candidates whose similarity ratio to query
// meets cutoff, best first. Ratio is 2*M/T where M is the total size of the
// longest matching blocks and T the combined length, so equal strings score
// 1 and disjoint strings score 0.
func closeMatches(query string, candidates []string, n int, cutoff float64) []string {
	type scored struct {
		text  string
		ratio float64
	}

	q := []rune(query)
	matches := make([]scored, 0, n)
	for _, c := range candidates {
		r := ratio(q, []rune(c))
		if r >= cutoff {
			matches = append(matches, scored{text: c, ratio: r})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ratio > matches[j].ratio
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.text
	}
	return out
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}

	matched := 0
	for _, block := range matchingBlocks(a, b) {
		matched += block.size
	}
	return 2 * float64(matched) / float64(total)
}

type match struct {
	a, b, size int
}

// matchingBlocks finds non-overlapping longest matching blocks by recursive
// divide and conquer around the longest match.
func matchingBlocks(a, b []rune) []match {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	var blocks []match
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.a && s.blo < m.b {
			queue = append(queue, span{s.alo, m.a, s.blo, m.b})
		}
		if m.a+m.size < s.ahi && m.b+m.size < s.bhi {
			queue = append(queue, span{m.a + m.size, s.ahi, m.b + m.size, s.bhi})
		}
	}
	return blocks
}

// longestMatch finds the longest matching block in a[alo:ahi] x b[blo:bhi].
// Ties prefer the earliest block in a, then in b.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) match {
	best := match{a: alo, b: blo}
	// j2len[j] = length of the longest match ending at a[i-1], b[j-1]
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.size {
				best = match{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newJ2len
	}
	return best
}
