package utils

// Levenshtein computes the edit distance between a and b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// SuggestionThreshold is the maximum edit distance considered "close enough"
// for a did-you-mean hint.
const SuggestionThreshold = 2

// ClosestMatch returns the candidate nearest to name, or "" when nothing is
// within SuggestionThreshold.
func ClosestMatch(name string, candidates []string) string {
	best := ""
	bestDist := SuggestionThreshold + 1
	for _, c := range candidates {
		d := Levenshtein(name, c)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
