// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	LISTEN_ADDRESS        = "LISTEN_ADDRESS"
	ORIGIN_ALLOWED        = "ORIGIN_ALLOWED"
	LOG_LEVEL             = "LOG_LEVEL"
	LOG_FORMAT            = "LOG_FORMAT"
	SERVICE_MODE          = "SERVICE_MODE"
	ORCHESTRATOR_BASE_URL = "ORCHESTRATOR_BASE_URL"
	WORKFLOW_NAME         = "WORKFLOW_NAME"
	LLM_PROVIDER          = "LLM_PROVIDER"
	LLM_MODEL             = "LLM_MODEL"
	LLM_MAX_TOKENS        = "LLM_MAX_TOKENS"
	LLM_TIMEOUT           = "LLM_TIMEOUT"
	ANTHROPIC_API_KEY     = "ANTHROPIC_API_KEY"
	ANTHROPIC_BASE_URL    = "ANTHROPIC_BASE_URL"
	OPENAI_API_KEY        = "OPENAI_API_KEY"
	OPENAI_BASE_URL       = "OPENAI_BASE_URL"
	OLLAMA_URL            = "OLLAMA_URL"
	REVIEW_CACHE_SIZE     = "REVIEW_CACHE_SIZE"
	REVIEW_CACHE_TTL      = "REVIEW_CACHE_TTL"
)

type SystemInfoService interface {
	Init() error
	GetListenAddress() string
	GetOriginAllowed() string
	GetLogLevel() string
	GetLogFormat() string
	GetServiceMode() view.ServiceMode
	GetOrchestratorBaseUrl() string
	GetWorkflowName() string
	GetLLMConfig() client.LLMConfig
	GetCredentialEnv() string
	GetLLMTimeout() time.Duration
	GetReviewCacheSize() int
	GetReviewCacheTTL() time.Duration
}

// LoadDotEnv loads variables from path, or from ./.env when path is empty.
// A missing default file is not an error. Variables already set in the
// environment are not overridden.
func LoadDotEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func NewSystemInfoService() (SystemInfoService, error) {
	s := &systemInfoServiceImpl{
		systemInfoMap: make(map[string]interface{})}
	if err := s.Init(); err != nil {
		log.Error("Failed to read system info: " + err.Error())
		return nil, err
	}
	return s, nil
}

type systemInfoServiceImpl struct {
	systemInfoMap map[string]interface{}
}

func (g systemInfoServiceImpl) Init() error {
	g.setListenAddress()
	g.setOriginAllowed()
	g.setLogLevel()
	g.setLogFormat()
	if err := g.setServiceMode(); err != nil {
		return err
	}
	g.setOrchestratorBaseUrl()
	g.setWorkflowName()
	if err := g.setLLMConfig(); err != nil {
		return err
	}
	if err := g.setLLMTimeout(); err != nil {
		return err
	}
	if err := g.setReviewCache(); err != nil {
		return err
	}

	return nil
}

func (g systemInfoServiceImpl) setListenAddress() {
	listenAddr := os.Getenv(LISTEN_ADDRESS)
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	g.systemInfoMap[LISTEN_ADDRESS] = listenAddr
}

func (g systemInfoServiceImpl) GetListenAddress() string {
	return g.systemInfoMap[LISTEN_ADDRESS].(string)
}

func (g systemInfoServiceImpl) setOriginAllowed() {
	origin := os.Getenv(ORIGIN_ALLOWED)
	if origin == "" {
		origin = "*"
	}
	g.systemInfoMap[ORIGIN_ALLOWED] = origin
}

func (g systemInfoServiceImpl) GetOriginAllowed() string {
	return g.systemInfoMap[ORIGIN_ALLOWED].(string)
}

func (g systemInfoServiceImpl) setLogLevel() {
	level := os.Getenv(LOG_LEVEL)
	if level == "" {
		level = "info"
	}
	g.systemInfoMap[LOG_LEVEL] = level
}

func (g systemInfoServiceImpl) GetLogLevel() string {
	return g.systemInfoMap[LOG_LEVEL].(string)
}

func (g systemInfoServiceImpl) setLogFormat() {
	format := os.Getenv(LOG_FORMAT)
	if format == "" {
		format = "text"
	}
	g.systemInfoMap[LOG_FORMAT] = format
}

func (g systemInfoServiceImpl) GetLogFormat() string {
	return g.systemInfoMap[LOG_FORMAT].(string)
}

func (g systemInfoServiceImpl) setServiceMode() error {
	mode := view.ServiceMode(os.Getenv(SERVICE_MODE))
	switch mode {
	case "":
		mode = view.ModeStandalone
	case view.ModeStandalone, view.ModeRemote:
	default:
		return fmt.Errorf("%s value %q is incorrect, available options are: %s, %s", SERVICE_MODE, mode, view.ModeStandalone, view.ModeRemote)
	}
	g.systemInfoMap[SERVICE_MODE] = mode
	return nil
}

func (g systemInfoServiceImpl) GetServiceMode() view.ServiceMode {
	return g.systemInfoMap[SERVICE_MODE].(view.ServiceMode)
}

func (g systemInfoServiceImpl) setOrchestratorBaseUrl() {
	baseUrl := os.Getenv(ORCHESTRATOR_BASE_URL)
	if baseUrl == "" {
		baseUrl = client.DefaultOrchestratorURL
	}
	g.systemInfoMap[ORCHESTRATOR_BASE_URL] = baseUrl
}

func (g systemInfoServiceImpl) GetOrchestratorBaseUrl() string {
	return g.systemInfoMap[ORCHESTRATOR_BASE_URL].(string)
}

func (g systemInfoServiceImpl) setWorkflowName() {
	name := os.Getenv(WORKFLOW_NAME)
	if name == "" {
		name = DefaultWorkflowName
	}
	g.systemInfoMap[WORKFLOW_NAME] = name
}

func (g systemInfoServiceImpl) GetWorkflowName() string {
	return g.systemInfoMap[WORKFLOW_NAME].(string)
}

func (g systemInfoServiceImpl) setLLMConfig() error {
	provider := os.Getenv(LLM_PROVIDER)
	if provider == "" {
		provider = client.ProviderAnthropic
	}

	maxTokens := client.DefaultMaxTokens
	if str := os.Getenv(LLM_MAX_TOKENS); str != "" {
		val, err := strconv.Atoi(str)
		if err != nil || val <= 0 {
			return fmt.Errorf("%s value %q is not a positive integer", LLM_MAX_TOKENS, str)
		}
		maxTokens = val
	}

	cfg := client.LLMConfig{
		Provider:  provider,
		Model:     os.Getenv(LLM_MODEL),
		MaxTokens: maxTokens,
	}
	switch provider {
	case client.ProviderAnthropic:
		cfg.ApiKey = os.Getenv(ANTHROPIC_API_KEY)
		cfg.BaseURL = os.Getenv(ANTHROPIC_BASE_URL)
		g.systemInfoMap[credentialEnvKey] = ANTHROPIC_API_KEY
	case client.ProviderOpenai:
		cfg.ApiKey = os.Getenv(OPENAI_API_KEY)
		cfg.BaseURL = os.Getenv(OPENAI_BASE_URL)
		g.systemInfoMap[credentialEnvKey] = OPENAI_API_KEY
	case client.ProviderOllama:
		cfg.BaseURL = os.Getenv(OLLAMA_URL)
		g.systemInfoMap[credentialEnvKey] = ""
	default:
		return fmt.Errorf("%s value %q is incorrect, available options are: %s, %s, %s", LLM_PROVIDER, provider,
			client.ProviderAnthropic, client.ProviderOpenai, client.ProviderOllama)
	}
	g.systemInfoMap[LLM_PROVIDER] = cfg
	return nil
}

const credentialEnvKey = "CREDENTIAL_ENV"

func (g systemInfoServiceImpl) GetLLMConfig() client.LLMConfig {
	return g.systemInfoMap[LLM_PROVIDER].(client.LLMConfig)
}

// GetCredentialEnv returns the name of the variable holding the provider api
// key, empty for providers that need none.
func (g systemInfoServiceImpl) GetCredentialEnv() string {
	return g.systemInfoMap[credentialEnvKey].(string)
}

func (g systemInfoServiceImpl) setLLMTimeout() error {
	timeout, err := getEnvDuration(LLM_TIMEOUT, 0)
	if err != nil {
		return err
	}
	g.systemInfoMap[LLM_TIMEOUT] = timeout
	return nil
}

func (g systemInfoServiceImpl) GetLLMTimeout() time.Duration {
	return g.systemInfoMap[LLM_TIMEOUT].(time.Duration)
}

func (g systemInfoServiceImpl) setReviewCache() error {
	size := 0
	if str := os.Getenv(REVIEW_CACHE_SIZE); str != "" {
		val, err := strconv.Atoi(str)
		if err != nil || val < 0 {
			return fmt.Errorf("%s value %q is not a non-negative integer", REVIEW_CACHE_SIZE, str)
		}
		size = val
	}
	g.systemInfoMap[REVIEW_CACHE_SIZE] = size

	ttl, err := getEnvDuration(REVIEW_CACHE_TTL, time.Hour)
	if err != nil {
		return err
	}
	g.systemInfoMap[REVIEW_CACHE_TTL] = ttl
	return nil
}

func (g systemInfoServiceImpl) GetReviewCacheSize() int {
	return g.systemInfoMap[REVIEW_CACHE_SIZE].(int)
}

func (g systemInfoServiceImpl) GetReviewCacheTTL() time.Duration {
	return g.systemInfoMap[REVIEW_CACHE_TTL].(time.Duration)
}

func getEnvDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	str := os.Getenv(name)
	if str == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(str)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("%s value %q is not a valid duration", name, str)
	}
	return val, nil
}
