package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// GenerateRequest is a provider-agnostic content generation request.
type GenerateRequest struct {
	Messages          []Message
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
}

// GenerateResponse carries the generated text plus per-call usage accounting.
// Token and cost totals are summed by the caller after all concurrent calls
// join; there is no shared mutable counter.
type GenerateResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// LLMService defines the interface for stateless language model calls.
// Implementations may use cloud APIs (Gemini, Claude); every call is
// independent with no session state.
type LLMService interface {
	// GenerateContent runs a single completion. The context carries the
	// per-call timeout; a timed-out call returns the context error.
	GenerateContent(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error)

	// Close releases provider clients.
	Close() error
}
