package edgar

import "sort"

const suggestCutoff = 0.6

// closeMatches returns up to n candidates similar to target, best first.
// Similarity is 1 - levenshtein/maxlen with a fixed cutoff, which tracks the
// behavior users expect from "did you mean" hints on short symbols.
func closeMatches(target string, candidates []string, n int) []string {
	type scored struct {
		s     string
		score float64
	}

	var matches []scored
	for _, c := range candidates {
		if c == target {
			continue
		}
		score := similarity(target, c)
		if score >= suggestCutoff {
			matches = append(matches, scored{c, score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].s < matches[j].s
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.s
	}
	return out
}

func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
