package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	"github.com/Netcracker/qubership-code-review-agent/view"
	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

const DefaultOrchestratorURL = "http://localhost:4111"

// WorkflowClient runs named workflows on a remote orchestration service that
// serves the same /api/workflows endpoints as this service.
type WorkflowClient interface {
	RunWorkflow(ctx context.Context, name string, input view.ReviewInput) (*view.WorkflowRun, error)
	GetWorkflow(ctx context.Context, name string) (*view.WorkflowDescriptor, error)
	BaseURL() string
}

func NewWorkflowClient(baseUrl string, timeout time.Duration) WorkflowClient {
	baseUrl = strings.TrimSuffix(baseUrl, "/")
	if baseUrl == "" {
		baseUrl = DefaultOrchestratorURL
	}
	cl := http.Client{Timeout: timeout}
	client := resty.NewWithClient(&cl)
	if parsed, err := url.Parse(baseUrl); err != nil {
		log.Errorf("Can't parse orchestrator url: %v", err)
	} else if parsed.Hostname() != "" {
		client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsed.Hostname()))
	}

	return &workflowClientImpl{baseUrl: baseUrl, client: client}
}

type workflowClientImpl struct {
	baseUrl string
	client  *resty.Client
}

func (w workflowClientImpl) BaseURL() string {
	return w.baseUrl
}

func (w workflowClientImpl) RunWorkflow(ctx context.Context, name string, input view.ReviewInput) (*view.WorkflowRun, error) {
	start := time.Now()
	runUrl := fmt.Sprintf("%s/api/workflows/%s/execute", w.baseUrl, url.PathEscape(name))

	req := w.makeRequest(ctx)
	req.SetBody(input)
	resp, err := req.Post(runUrl)
	if err != nil {
		return nil, w.workflowError(name, err.Error())
	}
	log.Debugf("remote workflow %s finished with status %d, it took %dms", name, resp.StatusCode(), time.Since(start).Milliseconds())

	var run view.WorkflowRun
	decodeErr := json.Unmarshal(resp.Body(), &run)

	if resp.StatusCode() != http.StatusOK {
		if decodeErr == nil && run.Error != "" {
			return nil, w.workflowError(name, run.Error)
		}
		var customErr exception.CustomError
		if err := json.Unmarshal(resp.Body(), &customErr); err == nil && customErr.Message != "" {
			return nil, w.workflowError(name, customErr.Error())
		}
		return nil, w.workflowError(name, fmt.Sprintf("status code %d %s", resp.StatusCode(), string(resp.Body())))
	}
	if decodeErr != nil {
		return nil, w.workflowError(name, fmt.Sprintf("failed to decode workflow run: %s", decodeErr))
	}
	if run.Status != view.WRSuccess || run.Result == nil {
		return nil, w.workflowError(name, fmt.Sprintf("run %s finished with status %q: %s", run.RunId, run.Status, run.Error))
	}
	return &run, nil
}

func (w workflowClientImpl) GetWorkflow(ctx context.Context, name string) (*view.WorkflowDescriptor, error) {
	req := w.makeRequest(ctx)
	resp, err := req.Get(fmt.Sprintf("%s/api/workflows/%s", w.baseUrl, url.PathEscape(name)))
	if err != nil {
		return nil, w.workflowError(name, err.Error())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.EntityNotFound,
			Message: exception.EntityNotFoundMsg,
			Params:  map[string]interface{}{"entity": "Workflow", "id": name},
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, w.workflowError(name, fmt.Sprintf("status code %d %s", resp.StatusCode(), string(resp.Body())))
	}
	var descriptor view.WorkflowDescriptor
	if err = json.Unmarshal(resp.Body(), &descriptor); err != nil {
		return nil, w.workflowError(name, fmt.Sprintf("failed to decode workflow descriptor: %s", err))
	}
	return &descriptor, nil
}

func (w workflowClientImpl) makeRequest(ctx context.Context) *resty.Request {
	req := w.client.R()
	req.SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	req.SetHeader("Accept", "application/json")
	if requestId := reqctx.GetRequestId(ctx); requestId != "" {
		req.SetHeader(reqctx.RequestIdHeader, requestId)
	}
	return req
}

func (w workflowClientImpl) workflowError(name string, msg string) error {
	return &exception.CustomError{
		Status:  http.StatusBadGateway,
		Code:    exception.RemoteWorkflowFailed,
		Message: exception.RemoteWorkflowFailedMsg,
		Params:  map[string]interface{}{"workflow": name, "url": w.baseUrl, "error": msg},
	}
}
