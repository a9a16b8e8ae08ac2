package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		expected     float64
	}{
		{
			name:         "claude sonnet",
			model:        "claude-sonnet-4-20250514",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			expected:     18.00,
		},
		{
			name:         "gemini flash",
			model:        "gemini-2.5-flash",
			inputTokens:  2_000_000,
			outputTokens: 0,
			expected:     0.60,
		},
		{
			name:         "prefix match wins over shorter family",
			model:        "gemini-2.0-flash-001",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			expected:     0.50,
		},
		{
			name:         "unknown model costs zero",
			model:        "llama-3-70b",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			expected:     0,
		},
		{
			name:         "zero tokens",
			model:        "claude-opus-4",
			inputTokens:  0,
			outputTokens: 0,
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := CalculateCost(tt.model, tt.inputTokens, tt.outputTokens)
			assert.InDelta(t, tt.expected, cost, 0.0001)
		})
	}
}
