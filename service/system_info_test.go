package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{LISTEN_ADDRESS, ORIGIN_ALLOWED, LOG_LEVEL, LOG_FORMAT, SERVICE_MODE,
		ORCHESTRATOR_BASE_URL, WORKFLOW_NAME, LLM_PROVIDER, LLM_MODEL, LLM_MAX_TOKENS, LLM_TIMEOUT,
		ANTHROPIC_API_KEY, ANTHROPIC_BASE_URL, OPENAI_API_KEY, OPENAI_BASE_URL, OLLAMA_URL,
		REVIEW_CACHE_SIZE, REVIEW_CACHE_TTL} {
		t.Setenv(name, "")
	}
}

func TestSystemInfoDefaults(t *testing.T) {
	clearEnv(t)

	info, err := NewSystemInfoService()
	require.NoError(t, err)
	assert.Equal(t, ":8080", info.GetListenAddress())
	assert.Equal(t, "*", info.GetOriginAllowed())
	assert.Equal(t, "info", info.GetLogLevel())
	assert.Equal(t, "text", info.GetLogFormat())
	assert.Equal(t, view.ModeStandalone, info.GetServiceMode())
	assert.Equal(t, client.DefaultOrchestratorURL, info.GetOrchestratorBaseUrl())
	assert.Equal(t, DefaultWorkflowName, info.GetWorkflowName())
	assert.Equal(t, client.LLMConfig{Provider: client.ProviderAnthropic, MaxTokens: client.DefaultMaxTokens}, info.GetLLMConfig())
	assert.Equal(t, ANTHROPIC_API_KEY, info.GetCredentialEnv())
	assert.Equal(t, time.Duration(0), info.GetLLMTimeout())
	assert.Equal(t, 0, info.GetReviewCacheSize())
	assert.Equal(t, time.Hour, info.GetReviewCacheTTL())
}

func TestSystemInfoFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(SERVICE_MODE, "remote")
	t.Setenv(LLM_PROVIDER, "openai")
	t.Setenv(OPENAI_API_KEY, "sk-test")
	t.Setenv(OPENAI_BASE_URL, "http://proxy/v1/")
	t.Setenv(LLM_MODEL, "gpt-4o")
	t.Setenv(LLM_MAX_TOKENS, "2048")
	t.Setenv(LLM_TIMEOUT, "90s")
	t.Setenv(REVIEW_CACHE_SIZE, "100")
	t.Setenv(REVIEW_CACHE_TTL, "10m")

	info, err := NewSystemInfoService()
	require.NoError(t, err)
	assert.Equal(t, view.ModeRemote, info.GetServiceMode())
	assert.Equal(t, client.LLMConfig{Provider: "openai", ApiKey: "sk-test", Model: "gpt-4o", BaseURL: "http://proxy/v1/", MaxTokens: 2048}, info.GetLLMConfig())
	assert.Equal(t, OPENAI_API_KEY, info.GetCredentialEnv())
	assert.Equal(t, 90*time.Second, info.GetLLMTimeout())
	assert.Equal(t, 100, info.GetReviewCacheSize())
	assert.Equal(t, 10*time.Minute, info.GetReviewCacheTTL())
}

func TestSystemInfoOllamaNeedsNoCredential(t *testing.T) {
	clearEnv(t)
	t.Setenv(LLM_PROVIDER, "ollama")
	t.Setenv(OLLAMA_URL, "http://gpu-box:11434")

	info, err := NewSystemInfoService()
	require.NoError(t, err)
	assert.Equal(t, "", info.GetCredentialEnv())
	assert.Equal(t, "http://gpu-box:11434", info.GetLLMConfig().BaseURL)
}

func TestSystemInfoRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		SERVICE_MODE:      "cluster",
		LLM_PROVIDER:      "gemini",
		LLM_MAX_TOKENS:    "-1",
		LLM_TIMEOUT:       "soon",
		REVIEW_CACHE_SIZE: "many",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(name, value)
			_, err := NewSystemInfoService()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "review.env")
	require.NoError(t, os.WriteFile(path, []byte("WORKFLOW_NAME=from-file\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv(LOG_LEVEL, "warn")
	// t.Setenv registers the restore; unset so godotenv can populate it
	require.NoError(t, os.Unsetenv(WORKFLOW_NAME))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(WORKFLOW_NAME))
	assert.Equal(t, "warn", os.Getenv(LOG_LEVEL))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
