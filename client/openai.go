package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	log "github.com/sirupsen/logrus"
)

func NewOpenaiClient(cfg LLMConfig) (LLMClient, error) {
	var opts []option.RequestOption
	if cfg.ApiKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.ApiKey))
	} else {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredential)
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// one attempt per review
	opts = append(opts, option.WithMaxRetries(0))

	var openAIModel openai.ChatModel
	if cfg.Model != "" {
		openAIModel = cfg.Model
	} else {
		openAIModel = openai.ChatModelGPT5
	}

	return &oaiClientImpl{
		client:    openai.NewClient(opts...),
		model:     openAIModel,
		maxTokens: cfg.MaxTokens,
	}, nil
}

type oaiClientImpl struct {
	client    openai.Client
	model     openai.ChatModel
	maxTokens int
}

func (l oaiClientImpl) Provider() string {
	return ProviderOpenai
}

func (l oaiClientImpl) Model() string {
	return l.model
}

func (l oaiClientImpl) GenerateObject(ctx context.Context, prompt string, schema OutputSchema) (string, error) {
	start := time.Now()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   schema.Name,
		Schema: schema.Schema,
		// line is optional in the review schema, strict mode requires every property
		Strict: openai.Bool(false),
	}
	if schema.Description != "" {
		schemaParam.Description = openai.String(schema.Description)
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Model: l.model,
	}
	if l.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(l.maxTokens))
	}

	log.Debugf("run %s generation with openai client, model %s", schema.Name, l.model)

	chat, err := l.client.Chat.Completions.New(ctx, params)
	log.Debugf("finished %s generation with openai client, it took %dms", schema.Name, time.Since(start).Milliseconds())
	if err != nil {
		return "", err
	}
	if len(chat.Choices) == 0 {
		return "", errors.New("openai: completion has no choices")
	}
	if refusal := chat.Choices[0].Message.Refusal; refusal != "" {
		return "", fmt.Errorf("openai: model refused to answer: %s", refusal)
	}

	return chat.Choices[0].Message.Content, nil
}
