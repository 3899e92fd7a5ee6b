package ui

import (
	"strings"
	"unicode"
)

type scoredIdx struct {
	idx   int
	score int
}

// fuzzyMatchScore matches needle as a case-insensitive subsequence of
// haystack and returns (score, ok). Lower score is better: the first match
// costs its offset and every later one the gap since the previous match.
func fuzzyMatchScore(needle, haystack string) (int, bool) {
	want := []rune(strings.ToLower(strings.TrimSpace(needle)))
	if len(want) == 0 {
		return 0, true
	}

	score, j, prev := 0, 0, -1
	for i, r := range []rune(haystack) {
		if j == len(want) {
			break
		}
		if unicode.ToLower(r) != want[j] {
			continue
		}
		if prev < 0 {
			score += i
		} else {
			score += i - prev - 1
		}
		prev = i
		j++
	}
	if j != len(want) {
		return 0, false
	}
	return score, true
}
