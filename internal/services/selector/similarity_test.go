package selector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "hello   world\n\ttab", "hello world tab"},
		{"lowercases", "Hello WORLD", "hello world"},
		{"trims edges", "  padded  ", "padded"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestSimilarity_Identical(t *testing.T) {
	score := Similarity("The quick brown fox", "the  quick brown FOX")
	assert.Equal(t, 1.0, score)
}

func TestSimilarity_Containment(t *testing.T) {
	node := "Preamble text. The quick brown fox jumps. Trailing text."
	score := Similarity(node, "The quick brown fox jumps.")

	assert.GreaterOrEqual(t, score, 0.75)
	assert.Less(t, score, 1.0)
}

func TestSimilarity_TighterContainerScoresHigher(t *testing.T) {
	expected := "The quick brown fox jumps."
	tight := "Intro. " + expected
	loose := strings.Repeat("Unrelated filler sentence. ", 20) + expected

	assert.Greater(t, Similarity(tight, expected), Similarity(loose, expected))
}

func TestSimilarity_NearMatch(t *testing.T) {
	score := Similarity("The quick brown fox jumps", "The quick brown fox jumped")
	assert.Greater(t, score, 0.8)
}

func TestSimilarity_Unrelated(t *testing.T) {
	score := Similarity("completely different content here", "zygote")
	assert.Less(t, score, 0.3)
}

func TestSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "text"))
	assert.Equal(t, 0.0, Similarity("text", ""))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levenshtein(tt.a, tt.b), "levenshtein(%q, %q)", tt.a, tt.b)
	}
}
