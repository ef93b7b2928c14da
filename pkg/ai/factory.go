package ai

import (
	"fmt"
	"os"

	domainAI "github.com/felixgeelhaar/architect/pkg/domain/ai"
)

// NewProvider builds the provider named in configuration, reading the API
// key from the provider's conventional environment variable. Every provider
// is wrapped in the resilient decorator.
func NewProvider(provider, model string) (domainAI.Provider, error) {
	var inner domainAI.Provider
	switch provider {
	case "", "gemini":
		inner = NewGeminiProvider(model, os.Getenv("GEMINI_API_KEY"))
	case "anthropic":
		inner = NewAnthropicProvider(model, os.Getenv("ANTHROPIC_API_KEY"))
	case "openai":
		inner = NewOpenAIProvider(model, os.Getenv("OPENAI_API_KEY"))
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want gemini, anthropic, or openai)", provider)
	}
	return NewResilientProvider(inner), nil
}
