package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/controller"
	"github.com/Netcracker/qubership-code-review-agent/service"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// app holds the components built from the configuration at startup.
type app struct {
	systemInfo       service.SystemInfoService
	registry         *prometheus.Registry
	metrics          *service.Metrics
	reviewService    service.ReviewService
	workflowRegistry service.WorkflowRegistry
	healthController controller.HealthController
	readyChan        chan bool
}

// newApp wires the services. When llmClient is nil it is created from the
// configured provider.
func newApp(systemInfo service.SystemInfoService, llmClient client.LLMClient) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	invoker, err := makeInvoker(systemInfo, llmClient, metrics)
	if err != nil {
		return nil, err
	}

	var reviewService service.ReviewService
	switch systemInfo.GetServiceMode() {
	case view.ModeRemote:
		workflowClient := client.NewWorkflowClient(systemInfo.GetOrchestratorBaseUrl(), systemInfo.GetLLMTimeout())
		reviewService = service.NewRemoteReviewService(workflowClient, systemInfo.GetWorkflowName(), metrics)
		log.Infof("Reviews are forwarded to workflow %s on %s", systemInfo.GetWorkflowName(), workflowClient.BaseURL())
		checkRemoteWorkflow(workflowClient, systemInfo.GetWorkflowName())
	default:
		cache := service.NewReviewCache(systemInfo.GetReviewCacheSize(), systemInfo.GetReviewCacheTTL())
		reviewService = service.NewReviewService(invoker, cache, metrics)
	}

	workflowRegistry := service.NewWorkflowRegistry(
		service.NewReviewWorkflow(systemInfo.GetWorkflowName(), service.BuildPrompt, invoker.Generate))

	readyChan := make(chan bool, 1)
	return &app{
		systemInfo:       systemInfo,
		registry:         registry,
		metrics:          metrics,
		reviewService:    reviewService,
		workflowRegistry: workflowRegistry,
		healthController: controller.NewHealthController(reviewService.Mode(), workflowRegistry.ListWorkflows(), readyChan),
		readyChan:        readyChan,
	}, nil
}

const remoteCheckTimeout = 5 * time.Second

// checkRemoteWorkflow logs whether the orchestrator knows the workflow.
// An unreachable orchestrator does not stop the startup.
func checkRemoteWorkflow(workflowClient client.WorkflowClient, name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), remoteCheckTimeout)
	defer cancel()
	descriptor, err := workflowClient.GetWorkflow(ctx, name)
	if err != nil {
		log.Warnf("Remote workflow check failed, reviews may fail: %v", err)
		return false
	}
	log.Infof("Remote workflow %s has steps %v", descriptor.Name, descriptor.Steps)
	return true
}

func (a *app) markReady() {
	a.readyChan <- true
	close(a.readyChan)
}

func makeInvoker(systemInfo service.SystemInfoService, llmClient client.LLMClient, metrics *service.Metrics) (service.ReviewInvoker, error) {
	cfg := systemInfo.GetLLMConfig()
	if llmClient == nil {
		if client.RequiresCredential(cfg.Provider) && cfg.ApiKey == "" {
			// requests answer with 500 until the key is configured
			log.Warnf("%s is not set, reviews will fail", systemInfo.GetCredentialEnv())
			return service.NewUnconfiguredInvoker(cfg.Provider, cfg.Model, systemInfo.GetCredentialEnv()), nil
		}
		var err error
		llmClient, err = client.NewLLMClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create llm client: %w", err)
		}
	}
	log.Infof("LLM provider: %s, model: %s", llmClient.Provider(), llmClient.Model())
	return service.NewReviewInvoker(llmClient, client.ReviewResultSchema, systemInfo.GetLLMTimeout(), metrics), nil
}

func configureLogging(systemInfo service.SystemInfoService) error {
	level, err := log.ParseLevel(systemInfo.GetLogLevel())
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	switch systemInfo.GetLogFormat() {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
