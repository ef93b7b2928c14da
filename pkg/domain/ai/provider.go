// Package ai defines the completion port the action translator speaks to.
// Concrete LLM clients live outside the domain and are selected at wiring
// time.
package ai

import (
	"context"
)

// CompletionRequest is a single-turn prompt. The translator puts the fixed
// instructions in System and the rendered world plus the user request in
// Prompt.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse carries the raw model text; extracting the proposal
// JSON from it is the translator's job, not the provider's.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage feeds the usage accounting written to usage.json.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is implemented by every LLM backend. ID identifies the provider
// and model in audit metadata and usage stats.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
