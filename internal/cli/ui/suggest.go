package ui

import (
	"sort"
	"strings"
)

// maxSuggestDistance bounds the edit distance of a suggestion
const maxSuggestDistance = 3

// Suggest returns up to limit candidates closest to target, ignoring case.
// Candidates further than three edits away are dropped.
//
// Example:
//
//	Suggest("netcore22", []string{"netcore-2.2", "netframework-4.8"}, 3)
//	// Returns: ["netcore-2.2"]
func Suggest(target string, candidates []string, limit int) []string {
	type scored struct {
		value    string
		distance int
	}

	var matches []scored
	for _, candidate := range candidates {
		d := editDistance(strings.ToLower(target), strings.ToLower(candidate))
		if d <= maxSuggestDistance {
			matches = append(matches, scored{value: candidate, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, limit)
	for i := 0; i < len(matches) && i < limit; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// editDistance is the Levenshtein distance between a and b, computed over two rows
func editDistance(a, b string) int {
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
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
