package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/adnota/internal/common"
)

func newTestFactory(defaultProvider string) *ProviderFactory {
	return NewProviderFactory(
		&common.GeminiConfig{},
		&common.ClaudeConfig{},
		&common.LLMConfig{DefaultProvider: defaultProvider, RequestsPerMinute: 30},
		arbor.NewLogger(),
	)
}

func TestDetectProvider(t *testing.T) {
	factory := newTestFactory("gemini")

	tests := []struct {
		model    string
		expected ProviderType
	}{
		{"claude-sonnet-4-20250514", ProviderClaude},
		{"claude/claude-sonnet-4-20250514", ProviderClaude},
		{"anthropic/claude-haiku-3", ProviderClaude},
		{"gemini-2.5-flash", ProviderGemini},
		{"gemini/gemini-2.5-pro", ProviderGemini},
		{"google/gemini-2.0-flash", ProviderGemini},
		{"", ProviderGemini},          // default
		{"gpt-4o", ProviderGemini},    // unknown falls back to default
		{"CLAUDE-OPUS", ProviderClaude},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, factory.DetectProvider(tt.model), "model %q", tt.model)
	}
}

func TestDetectProvider_DefaultClaude(t *testing.T) {
	factory := newTestFactory("claude")
	assert.Equal(t, ProviderClaude, factory.DetectProvider(""))
	assert.Equal(t, ProviderClaude, factory.DetectProvider("unknown-model"))
}

func TestNormalizeModel(t *testing.T) {
	factory := newTestFactory("gemini")

	assert.Equal(t, "claude-sonnet-4", factory.NormalizeModel("claude/claude-sonnet-4"))
	assert.Equal(t, "gemini-2.5-flash", factory.NormalizeModel("google/gemini-2.5-flash"))
	assert.Equal(t, "gemini-2.5-flash", factory.NormalizeModel("gemini-2.5-flash"))
}
