package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

func NewAnthropicClient(cfg LLMConfig) (LLMClient, error) {
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingCredential)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	opts := []anthropic.Option{
		anthropic.WithToken(cfg.ApiKey),
		anthropic.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic: failed to create client: %w", err)
	}
	return newLangchainClient(llm, ProviderAnthropic, model, cfg.MaxTokens), nil
}

func NewOllamaClient(cfg LLMConfig) (LLMClient, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = DefaultOllamaURL
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama: failed to create client: %w", err)
	}
	return newLangchainClient(llm, ProviderOllama, model, cfg.MaxTokens), nil
}

func newLangchainClient(llm llms.Model, provider string, model string, maxTokens int) LLMClient {
	return &langchainClientImpl{
		llm:       llm,
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
	}
}

// langchainClientImpl is used for providers without a native response schema
// parameter: the schema goes into the system message instead.
type langchainClientImpl struct {
	llm       llms.Model
	provider  string
	model     string
	maxTokens int
}

func (l langchainClientImpl) Provider() string {
	return l.provider
}

func (l langchainClientImpl) Model() string {
	return l.model
}

const structuredOutputInstruction = `Respond with a single JSON object that conforms to the JSON schema below.
Do not wrap the object in markdown and do not add any other text.

Schema "%s" (%s):
%s`

func (l langchainClientImpl) GenerateObject(ctx context.Context, prompt string, schema OutputSchema) (string, error) {
	start := time.Now()
	schemaStr, err := schema.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to marshal output schema: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(structuredOutputInstruction, schema.Name, schema.Description, schemaStr)),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	var opts []llms.CallOption
	if l.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(l.maxTokens))
	}

	log.Debugf("run %s generation with %s client, model %s", schema.Name, l.provider, l.model)

	resp, err := l.llm.GenerateContent(ctx, messages, opts...)
	log.Debugf("finished %s generation with %s client, it took %dms", schema.Name, l.provider, time.Since(start).Milliseconds())
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New(l.provider + ": completion has no choices")
	}
	return resp.Choices[0].Content, nil
}
