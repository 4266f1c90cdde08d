package client

import (
	"context"
	"errors"
	"fmt"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenai    = "openai"
	ProviderOllama    = "ollama"
)

const DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
const DefaultOllamaModel = "llama3.1"
const DefaultOllamaURL = "http://localhost:11434"
const DefaultMaxTokens = 4096

var ErrMissingCredential = errors.New("api key is required")

// LLMClient sends a single prompt to a model and asks for output that conforms
// to schema. The returned string is the raw model text.
type LLMClient interface {
	GenerateObject(ctx context.Context, prompt string, schema OutputSchema) (string, error)
	Provider() string
	Model() string
}

type LLMConfig struct {
	Provider  string
	ApiKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

func NewLLMClient(cfg LLMConfig) (LLMClient, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicClient(cfg)
	case ProviderOpenai:
		return NewOpenaiClient(cfg)
	case ProviderOllama:
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q, available options are: %s, %s, %s", cfg.Provider, ProviderAnthropic, ProviderOpenai, ProviderOllama)
	}
}

// RequiresCredential reports whether provider cannot be used without an api key.
func RequiresCredential(provider string) bool {
	return provider != ProviderOllama
}
