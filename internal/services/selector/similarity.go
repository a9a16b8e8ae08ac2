package selector

import (
	"strings"
)

// maxComparisonChars bounds the edit-distance computation; node texts beyond
// this are truncated before scoring.
const maxComparisonChars = 2000

// NormalizeText lowercases text and collapses all whitespace runs to single
// spaces. Both sides of every comparison go through this first.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similarity scores how well a node's text matches the expected text, in
// [0, 1]. Containment is the strong signal: a node containing the expected
// text verbatim scores at least 0.75, weighted up as the node's text length
// approaches the expected text's, so the tightest containing node outranks
// its ancestors. Otherwise a normalized edit-distance ratio is used.
func Similarity(nodeText, expectedText string) float64 {
	a := NormalizeText(nodeText)
	b := NormalizeText(expectedText)
	if a == "" || b == "" {
		return 0
	}

	if strings.Contains(a, b) {
		return 0.75 + 0.25*(float64(len(b))/float64(len(a)))
	}

	if len(a) > maxComparisonChars {
		a = a[:maxComparisonChars]
	}
	if len(b) > maxComparisonChars {
		b = b[:maxComparisonChars]
	}

	// Length difference alone bounds the ratio; skip the O(n*m) pass when
	// it cannot reach a useful score.
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if float64(longer-diff)/float64(longer) < 0.3 {
		return 0
	}

	return 1 - float64(levenshtein(a, b))/float64(longer)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
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
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
