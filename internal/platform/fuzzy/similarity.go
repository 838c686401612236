// Package fuzzy scores identity similarity between two names that have
// already been reduced to canonical form by textnorm.
package fuzzy

import "strings"

const containmentScore = 0.85

// Similarity returns a score in [0,1] for two canonical strings.
// Equal strings score 1.0, containment scores 0.85, anything else falls back
// to normalized Levenshtein distance.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentScore
	}
	if abbreviates(a, b) || abbreviates(b, a) {
		return containmentScore
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	return 1.0 - float64(editDistance(a, b))/float64(maxLen)
}

// abbreviates reports whether short is a word-wise abbreviation of long,
// e.g. "man-utd" against "manchester-united". Every token of short must
// cover a distinct token of long, in order, either as a prefix or as an
// in-order letter subsequence starting at the first letter.
func abbreviates(short, long string) bool {
	if len(short) >= len(long) {
		return false
	}

	shortTokens := strings.Split(short, "-")
	longTokens := strings.Split(long, "-")
	if len(shortTokens) == 0 || len(shortTokens) > len(longTokens) {
		return false
	}

	j := 0
	for _, st := range shortTokens {
		if len(st) < 2 {
			return false
		}
		matched := false
		for ; j < len(longTokens); j++ {
			if tokenAbbreviates(st, longTokens[j]) {
				matched = true
				j++
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func tokenAbbreviates(short, long string) bool {
	if len(short) > len(long) || len(short) == 0 {
		return false
	}
	if short[0] != long[0] {
		return false
	}

	i := 0
	for j := 0; j < len(long) && i < len(short); j++ {
		if short[i] == long[j] {
			i++
		}
	}
	return i == len(short)
}

// editDistance is the classic Levenshtein distance with unit costs for
// insert, delete, and substitute, over bytes (canonical form is ASCII).
func editDistance(a, b string) int {
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

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
