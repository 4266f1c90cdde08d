package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewJSON = `{"overall_rating":8,"issues":[],"positive_aspects":["small"],"summary":"ok"}`

func chatCompletionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-test",
		"choices": []interface{}{
			map[string]interface{}{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
					"refusal": nil,
				},
			},
		},
		"usage": map[string]interface{}{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func TestOpenaiGenerateObject(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody(reviewJSON))
	}))
	defer server.Close()

	cl, err := NewOpenaiClient(LLMConfig{ApiKey: "test-key", Model: "gpt-test", BaseURL: server.URL + "/v1/", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenai, cl.Provider())
	assert.Equal(t, "gpt-test", cl.Model())

	raw, err := cl.GenerateObject(context.Background(), "review this", ReviewResultSchema)
	require.NoError(t, err)
	assert.JSONEq(t, reviewJSON, raw)

	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, float64(100), body["max_completion_tokens"])
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "review this", messages[0].(map[string]interface{})["content"])

	format := body["response_format"].(map[string]interface{})
	assert.Equal(t, "json_schema", format["type"])
	jsonSchema := format["json_schema"].(map[string]interface{})
	assert.Equal(t, "code_review_result", jsonSchema["name"])
	assert.Contains(t, jsonSchema["schema"].(map[string]interface{})["properties"], "overall_rating")
}

func TestOpenaiSingleAttemptOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	cl, err := NewOpenaiClient(LLMConfig{ApiKey: "test-key", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	_, err = cl.GenerateObject(context.Background(), "review this", ReviewResultSchema)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenaiRequiresApiKey(t *testing.T) {
	_, err := NewOpenaiClient(LLMConfig{})
	assert.ErrorIs(t, err, ErrMissingCredential)
}
