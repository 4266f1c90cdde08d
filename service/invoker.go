package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	"github.com/Netcracker/qubership-code-review-agent/view"
)

// ReviewInvoker performs one structured completion per call and never retries.
type ReviewInvoker interface {
	Invoke(ctx context.Context, prompt string) view.ApiResponse
	Generate(ctx context.Context, prompt string) (*view.ReviewResult, string, error)
	Provider() string
	Model() string
	CheckConfigured() error
}

func NewReviewInvoker(llmClient client.LLMClient, schema client.OutputSchema, timeout time.Duration, metrics *Metrics) ReviewInvoker {
	return &reviewInvokerImpl{
		llmClient: llmClient,
		schema:    schema,
		timeout:   timeout,
		metrics:   metrics,
	}
}

// NewUnconfiguredInvoker returns an invoker for a provider whose api key is
// absent. Every call fails with MissingCredential naming credentialEnv.
func NewUnconfiguredInvoker(provider string, model string, credentialEnv string) ReviewInvoker {
	return &unconfiguredInvokerImpl{provider: provider, model: model, credentialEnv: credentialEnv}
}

type reviewInvokerImpl struct {
	llmClient client.LLMClient
	schema    client.OutputSchema
	timeout   time.Duration
	metrics   *Metrics
}

func (r reviewInvokerImpl) Provider() string {
	return r.llmClient.Provider()
}

func (r reviewInvokerImpl) Model() string {
	return r.llmClient.Model()
}

func (r reviewInvokerImpl) CheckConfigured() error {
	return nil
}

func (r reviewInvokerImpl) Invoke(ctx context.Context, prompt string) (resp view.ApiResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			reqctx.Logger(ctx).Errorf("Review invocation panicked: %v", rec)
			resp = view.ErrorResponse(fmt.Errorf("review invocation failed: %v", rec))
		}
	}()

	result, _, err := r.Generate(ctx, prompt)
	if err != nil {
		return apiErrorResponse(err)
	}
	return view.SuccessResponse(result)
}

func (r reviewInvokerImpl) Generate(ctx context.Context, prompt string) (*view.ReviewResult, string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger := reqctx.Logger(ctx)
	provider := r.llmClient.Provider()
	start := time.Now()
	raw, err := r.llmClient.GenerateObject(ctx, prompt, r.schema)
	if err != nil {
		r.metrics.ObserveLLMCall(provider, OutcomeFailure, time.Since(start))
		logger.Errorf("LLM provider %s (model %s) request failed: %s", provider, r.llmClient.Model(), err)
		return nil, "", &exception.CustomError{
			Status:  http.StatusBadGateway,
			Code:    exception.ProviderError,
			Message: exception.ProviderErrorMsg,
			Params:  map[string]interface{}{"provider": provider, "error": err.Error()},
			Debug:   err.Error(),
		}
	}
	r.metrics.ObserveLLMCall(provider, OutcomeSuccess, time.Since(start))
	logger.Debugf("LLM provider %s answered in %s", provider, time.Since(start))

	result, err := DecodeReviewResult(raw)
	if err != nil {
		logger.Warnf("LLM provider %s returned a result that does not match the output schema: %s", provider, err)
		return nil, raw, err
	}
	return result, raw, nil
}

// DecodeReviewResult parses model text into a validated ReviewResult.
// Markdown code fences and text around the outermost JSON object are ignored.
func DecodeReviewResult(raw string) (*view.ReviewResult, error) {
	text := extractJsonObject(raw)
	var result view.ReviewResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, invalidReviewResultError(err.Error())
	}
	if err := result.Validate(); err != nil {
		return nil, invalidReviewResultError(violationsMessage(err))
	}
	return &result, nil
}

func invalidReviewResultError(violations string) error {
	return &exception.CustomError{
		Status:  http.StatusBadGateway,
		Code:    exception.InvalidReviewResult,
		Message: exception.InvalidReviewResultMsg,
		Params:  map[string]interface{}{"violations": violations},
	}
}

// violationsMessage flattens errors.Join output into a single line.
func violationsMessage(err error) string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(joined.Unwrap()))
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func extractJsonObject(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// apiErrorResponse converts err into the error shape of ApiResponse, keeping
// the error code when err is a CustomError.
func apiErrorResponse(err error) view.ApiResponse {
	resp := view.ErrorResponse(err)
	var customErr *exception.CustomError
	if errors.As(err, &customErr) {
		resp.Code = customErr.Code
	}
	return resp
}

type unconfiguredInvokerImpl struct {
	provider      string
	model         string
	credentialEnv string
}

func (u unconfiguredInvokerImpl) Provider() string {
	return u.provider
}

func (u unconfiguredInvokerImpl) Model() string {
	return u.model
}

func (u unconfiguredInvokerImpl) CheckConfigured() error {
	return &exception.CustomError{
		Status:  http.StatusInternalServerError,
		Code:    exception.MissingCredential,
		Message: exception.MissingCredentialMsg,
		Params:  map[string]interface{}{"env": u.credentialEnv},
	}
}

func (u unconfiguredInvokerImpl) Invoke(ctx context.Context, prompt string) view.ApiResponse {
	return apiErrorResponse(u.CheckConfigured())
}

func (u unconfiguredInvokerImpl) Generate(ctx context.Context, prompt string) (*view.ReviewResult, string, error) {
	return nil, "", u.CheckConfigured()
}
