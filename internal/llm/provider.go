package llm

import (
	"fmt"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderCerebras   = "cerebras"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	ProviderNone       = "none"
)

// NewClient creates a secondary-opinion client based on the provider name.
// ProviderNone (or an empty name) returns a nil client, which disables the
// secondary-opinion rule.
func NewClient(provider, apiKey string) (domain.OpinionClient, error) {
	switch provider {
	case ProviderNone, "":
		return nil, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasClient(apiKey), nil

	case ProviderOpenRouter:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for OpenRouter provider")
		}
		return NewOpenRouterClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, gemini, cerebras, openrouter, mock, none)", provider)
	}
}
