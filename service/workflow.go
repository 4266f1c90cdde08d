package service

import (
	"context"
	"net/http"
	"sort"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/google/uuid"
)

const DefaultWorkflowName = "code-review-workflow"
const AnalyzeCodeStepId = "analyze-code"

type PromptBuilder func(input view.ReviewInput) string

// Invoker returns the decoded review together with the raw model text.
type Invoker func(ctx context.Context, prompt string) (*view.ReviewResult, string, error)

// Workflow is a named binding of the review operation that an orchestration
// caller can trigger with a ReviewInput.
type Workflow interface {
	Name() string
	Describe() view.WorkflowDescriptor
	Execute(ctx context.Context, input view.ReviewInput) (*view.WorkflowRun, error)
}

func NewReviewWorkflow(name string, build PromptBuilder, invoke Invoker) Workflow {
	if name == "" {
		name = DefaultWorkflowName
	}
	return &reviewWorkflowImpl{name: name, build: build, invoke: invoke}
}

type reviewWorkflowImpl struct {
	name   string
	build  PromptBuilder
	invoke Invoker
}

func (w reviewWorkflowImpl) Name() string {
	return w.name
}

func (w reviewWorkflowImpl) Describe() view.WorkflowDescriptor {
	return view.WorkflowDescriptor{
		Name:          w.name,
		Steps:         []string{AnalyzeCodeStepId},
		TriggerSchema: client.ReviewInputSchema,
	}
}

// Execute runs the analyze-code step. Input validation errors are returned
// as error with no run; a failed step returns the run in failed state
// together with the step error.
func (w reviewWorkflowImpl) Execute(ctx context.Context, input view.ReviewInput) (*view.WorkflowRun, error) {
	if err := validateReviewInput(input); err != nil {
		return nil, err
	}

	run := &view.WorkflowRun{
		RunId:    uuid.New().String(),
		Workflow: w.name,
		StepId:   AnalyzeCodeStepId,
	}
	logger := reqctx.Logger(ctx).WithField("runId", run.RunId)
	logger.Infof("Workflow %s step %s started", w.name, AnalyzeCodeStepId)

	review, raw, err := w.invoke(ctx, w.build(input))
	if err != nil {
		logger.Warnf("Workflow %s step %s failed: %s", w.name, AnalyzeCodeStepId, err)
		run.Status = view.WRFailed
		run.Error = err.Error()
		return run, err
	}

	run.Status = view.WRSuccess
	run.Result = &view.WorkflowResult{Review: review, RawResponse: raw}
	logger.Infof("Workflow %s step %s finished", w.name, AnalyzeCodeStepId)
	return run, nil
}

type WorkflowRegistry interface {
	GetWorkflow(name string) (*view.WorkflowDescriptor, error)
	RunWorkflow(ctx context.Context, name string, input view.ReviewInput) (*view.WorkflowRun, error)
	ListWorkflows() []string
}

func NewWorkflowRegistry(workflows ...Workflow) WorkflowRegistry {
	registry := &workflowRegistryImpl{workflows: make(map[string]Workflow, len(workflows))}
	for _, wf := range workflows {
		registry.workflows[wf.Name()] = wf
	}
	return registry
}

type workflowRegistryImpl struct {
	workflows map[string]Workflow
}

func (r workflowRegistryImpl) ListWorkflows() []string {
	names := make([]string, 0, len(r.workflows))
	for name := range r.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r workflowRegistryImpl) GetWorkflow(name string) (*view.WorkflowDescriptor, error) {
	wf, err := r.findWorkflow(name)
	if err != nil {
		return nil, err
	}
	descriptor := wf.Describe()
	return &descriptor, nil
}

func (r workflowRegistryImpl) RunWorkflow(ctx context.Context, name string, input view.ReviewInput) (*view.WorkflowRun, error) {
	wf, err := r.findWorkflow(name)
	if err != nil {
		return nil, err
	}
	return wf.Execute(ctx, input)
}

func (r workflowRegistryImpl) findWorkflow(name string) (Workflow, error) {
	wf, exists := r.workflows[name]
	if !exists {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.EntityNotFound,
			Message: exception.EntityNotFoundMsg,
			Params:  map[string]interface{}{"entity": "Workflow", "id": name},
		}
	}
	return wf, nil
}
