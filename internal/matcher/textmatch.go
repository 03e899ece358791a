package matcher

import "strings"

// LevenshteinDistance computes the minimum number of single-rune edits
// (insertions, deletions, substitutions) needed to turn a into b
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j-1]+cost, minInt(curr[j-1]+1, prev[j]+1))
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// identifierScore applies the graded identifier ladder between one extracted
// value and a candidate identifier: containment in either direction is a
// full-strength match, a shared 3-character suffix a partial one, and an
// edit distance of at most 2 a weak one. An empty candidate identifier never
// matches anything.
func identifierScore(extracted, candidate string, confidence float64) float64 {
	if candidate == "" || extracted == "" {
		return 0
	}

	if strings.Contains(candidate, extracted) || strings.Contains(extracted, candidate) {
		return confidence * 100
	}
	if sharedSuffix(candidate, extracted, 3) {
		return confidence * 70
	}
	if LevenshteinDistance(candidate, extracted) <= 2 {
		return confidence * 50
	}

	return 0
}

// sharedSuffix reports whether both strings are at least n runes long and
// end with the same n runes
func sharedSuffix(a, b string, n int) bool {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < n || len(rb) < n {
		return false
	}
	return string(ra[len(ra)-n:]) == string(rb[len(rb)-n:])
}

// nameTokenScore scores one extracted name against a candidate customer name.
// Both are tokenized on whitespace and every token pair contributes: 25 for
// containment in either direction, 15 for an edit distance of at most 2.
// The accumulated total is capped at 100 before confidence weighting.
func nameTokenScore(extracted, candidate string, confidence float64) float64 {
	candidateTokens := strings.Fields(strings.ToLower(candidate))
	extractedTokens := strings.Fields(strings.ToLower(extracted))
	if len(candidateTokens) == 0 || len(extractedTokens) == 0 {
		return 0
	}

	total := 0.0
	for _, ct := range candidateTokens {
		for _, et := range extractedTokens {
			if strings.Contains(ct, et) || strings.Contains(et, ct) {
				total += 25
			} else if LevenshteinDistance(ct, et) <= 2 {
				total += 15
			}
		}
	}

	if total > 100 {
		total = 100
	}
	return total * confidence
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
