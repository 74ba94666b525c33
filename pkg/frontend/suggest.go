package frontend

import "sort"

// nearestName returns the closest candidate to target by Levenshtein
// distance, for a "did you mean %q?" diagnostic hint. Adapted from
// pkg/errors/suggestions.go's FindBestSuggestions, narrowed to a single
// best match and to identifier/function names — the common-typo
// dictionary and syntax-pattern matcher in that file are SQL/web-domain
// specific and have no analogue here.
func nearestName(target string, candidates []string) (string, bool) {
	const maxDistance = 3

	type scored struct {
		name     string
		distance int
	}
	var results []scored
	for _, c := range candidates {
		if c == target {
			continue
		}
		d := levenshteinDistance(target, c)
		if d <= maxDistance {
			results = append(results, scored{c, d})
		}
	}
	if len(results) == 0 {
		return "", false
	}

	sort.Slice(results, func(i, j int) bool { return results[i].distance < results[j].distance })
	return results[0].name, true
}

func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	m, n := len(r1), len(r2)

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[n]
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
