package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReviewJson = `{"overall_rating":8,"issues":[{"type":"bug","severity":"high","line":3,"description":"nil map write","suggestion":"initialize the map"}],"positive_aspects":["clear names"],"summary":"Mostly fine"}`

type fakeLLMClient struct {
	response string
	err      error
	panicMsg string
	calls    int
	prompts  []string
	deadline bool
}

func (f *fakeLLMClient) GenerateObject(ctx context.Context, prompt string, schema client.OutputSchema) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	_, f.deadline = ctx.Deadline()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.response, f.err
}

func (f *fakeLLMClient) Provider() string {
	return "fake"
}

func (f *fakeLLMClient) Model() string {
	return "fake-model"
}

func TestInvokeSuccess(t *testing.T) {
	llm := &fakeLLMClient{response: validReviewJson}
	resp := NewReviewInvoker(llm, client.ReviewResultSchema, 0, nil).Invoke(context.Background(), "prompt")

	require.True(t, resp.Success)
	assert.Equal(t, 8, resp.Data.OverallRating)
	require.Len(t, resp.Data.Issues, 1)
	assert.Equal(t, view.IssueTypeBug, resp.Data.Issues[0].Type)
	assert.Equal(t, 3, *resp.Data.Issues[0].Line)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 1, llm.calls)
	assert.False(t, llm.deadline)
}

func TestInvokeProviderErrorIsSingleAttempt(t *testing.T) {
	llm := &fakeLLMClient{err: errors.New("connection refused")}
	resp := NewReviewInvoker(llm, client.ReviewResultSchema, 0, nil).Invoke(context.Background(), "prompt")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "LLM provider fake request failed: connection refused", resp.Error)
	assert.Equal(t, exception.ProviderError, resp.Code)
	assert.Equal(t, 1, llm.calls)
}

func TestInvokeRejectsNonConformingOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  string
	}{
		{
			name:     "rating out of range",
			response: `{"overall_rating":11,"issues":[],"positive_aspects":[],"summary":"s"}`,
			wantErr:  "overall_rating 11 is out of range [1,10]",
		},
		{
			name:     "missing issues",
			response: `{"overall_rating":5,"positive_aspects":[],"summary":"s"}`,
			wantErr:  "issues is required",
		},
		{
			name:     "unknown severity",
			response: `{"overall_rating":5,"issues":[{"type":"bug","severity":"blocker","description":"d","suggestion":"s"}],"positive_aspects":[],"summary":"s"}`,
			wantErr:  `issues[0].severity "blocker"`,
		},
		{
			name:     "missing summary",
			response: `{"overall_rating":5,"issues":[],"positive_aspects":[]}`,
			wantErr:  "summary is required",
		},
		{
			name:     "missing rating",
			response: `{"issues":[],"positive_aspects":[],"summary":"s"}`,
			wantErr:  "overall_rating is required",
		},
		{
			name:     "issue without description",
			response: `{"overall_rating":5,"issues":[{"type":"bug","severity":"low","suggestion":"s"}],"positive_aspects":[],"summary":"s"}`,
			wantErr:  "issues[0].description is required",
		},
		{
			name:     "issue without suggestion",
			response: `{"overall_rating":5,"issues":[{"type":"bug","severity":"low","description":"d"}],"positive_aspects":[],"summary":"s"}`,
			wantErr:  "issues[0].suggestion is required",
		},
		{
			name:     "fractional rating",
			response: `{"overall_rating":7.5,"issues":[],"positive_aspects":[],"summary":"s"}`,
			wantErr:  "overall_rating 7.5 is not an integer",
		},
		{
			name:     "fractional line",
			response: `{"overall_rating":5,"issues":[{"type":"bug","severity":"low","line":3.5,"description":"d","suggestion":"s"}],"positive_aspects":[],"summary":"s"}`,
			wantErr:  "issues[0].line 3.5 is not an integer",
		},
		{
			name:     "not json",
			response: `I cannot review this code`,
			wantErr:  "Review result does not match the output schema",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLMClient{response: tt.response}
			resp := NewReviewInvoker(llm, client.ReviewResultSchema, 0, nil).Invoke(context.Background(), "prompt")
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantErr)
			assert.Equal(t, exception.InvalidReviewResult, resp.Code)
		})
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	llm := &fakeLLMClient{panicMsg: "boom"}
	resp := NewReviewInvoker(llm, client.ReviewResultSchema, 0, nil).Invoke(context.Background(), "prompt")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "boom")
}

func TestInvokeAppliesTimeout(t *testing.T) {
	llm := &fakeLLMClient{response: validReviewJson}
	NewReviewInvoker(llm, client.ReviewResultSchema, time.Minute, nil).Invoke(context.Background(), "prompt")
	assert.True(t, llm.deadline)
}

func TestGenerateReturnsRawText(t *testing.T) {
	raw := "```json\n" + validReviewJson + "\n```"
	llm := &fakeLLMClient{response: raw}
	result, text, err := NewReviewInvoker(llm, client.ReviewResultSchema, 0, nil).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, raw, text)
	assert.Equal(t, "Mostly fine", result.Summary)
}

func TestDecodeReviewResultJoinsViolations(t *testing.T) {
	_, err := DecodeReviewResult(`{"overall_rating":0,"summary":"s"}`)
	require.Error(t, err)
	assert.Equal(t, "Review result does not match the output schema: overall_rating 0 is out of range [1,10]; issues is required; positive_aspects is required", err.Error())
}

func TestDecodeReviewResultIgnoresSurroundingText(t *testing.T) {
	result, err := DecodeReviewResult("Here is the review:\n" + validReviewJson + "\nThanks")
	require.NoError(t, err)
	assert.Equal(t, 8, result.OverallRating)
}

func TestUnconfiguredInvoker(t *testing.T) {
	invoker := NewUnconfiguredInvoker("anthropic", "claude", "ANTHROPIC_API_KEY")

	err := invoker.CheckConfigured()
	require.Error(t, err)
	assert.Equal(t, "ANTHROPIC_API_KEY not configured", err.Error())

	var customErr *exception.CustomError
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, 500, customErr.Status)

	resp := invoker.Invoke(context.Background(), "prompt")
	assert.False(t, resp.Success)
	assert.Equal(t, exception.MissingCredential, resp.Code)
}

func TestDecodeReviewResultAcceptsWholeFloats(t *testing.T) {
	result, err := DecodeReviewResult(`{"overall_rating":7.0,"issues":[{"type":"bug","severity":"low","line":3.0,"description":"d","suggestion":"s"}],"positive_aspects":[],"summary":"s"}`)
	require.NoError(t, err)
	assert.Equal(t, 7, result.OverallRating)
	require.NotNil(t, result.Issues[0].Line)
	assert.Equal(t, 3, *result.Issues[0].Line)
}

func TestDecodeReviewResultReportsEveryMissingField(t *testing.T) {
	_, err := DecodeReviewResult(`{"overall_rating":5,"issues":[{"type":"bug","severity":"low"}],"positive_aspects":[]}`)
	require.Error(t, err)
	assert.Equal(t, "Review result does not match the output schema: summary is required; issues[0].description is required; issues[0].suggestion is required", err.Error())
}
