package service

import (
	"context"
	"net/http"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	"github.com/Netcracker/qubership-code-review-agent/utils"
	"github.com/Netcracker/qubership-code-review-agent/view"
)

// ReviewService answers review requests. Review returns an error only for
// problems of the request or of the service configuration (invalid input,
// missing credential); every review failure is reported inside ApiResponse.
type ReviewService interface {
	Review(ctx context.Context, input view.ReviewInput) (*view.ApiResponse, error)
	Mode() view.ServiceMode
}

func NewReviewService(invoker ReviewInvoker, cache ReviewCache, metrics *Metrics) ReviewService {
	if cache == nil {
		cache = noopReviewCache{}
	}
	return &reviewServiceImpl{
		invoker: invoker,
		cache:   cache,
		metrics: metrics,
	}
}

type reviewServiceImpl struct {
	invoker ReviewInvoker
	cache   ReviewCache
	metrics *Metrics
}

func (r reviewServiceImpl) Mode() view.ServiceMode {
	return view.ModeStandalone
}

func (r reviewServiceImpl) Review(ctx context.Context, input view.ReviewInput) (*view.ApiResponse, error) {
	if err := validateReviewInput(input); err != nil {
		return nil, err
	}
	if err := r.invoker.CheckConfigured(); err != nil {
		return nil, err
	}

	logger := reqctx.Logger(ctx)
	prompt := BuildPrompt(input)
	key := reviewCacheKey(r.invoker, prompt)
	if cached, ok := r.cache.Get(key); ok {
		logger.Debugf("Review cache hit for %s", key)
		r.metrics.ObserveReview(string(view.ModeStandalone), OutcomeCacheHit)
		resp := view.SuccessResponse(cached)
		return &resp, nil
	}

	logger.Infof("Reviewing %d bytes of %s code with %s/%s", len(input.Code), languageOrUnknown(input.Language),
		r.invoker.Provider(), r.invoker.Model())
	resp := r.invoker.Invoke(ctx, prompt)
	if resp.Success {
		r.cache.Put(key, resp.Data)
		r.metrics.ObserveReview(string(view.ModeStandalone), OutcomeSuccess)
	} else {
		logger.Warnf("Review failed: %s", resp.Error)
		r.metrics.ObserveReview(string(view.ModeStandalone), OutcomeFailure)
	}
	return &resp, nil
}

func reviewCacheKey(invoker ReviewInvoker, prompt string) string {
	return utils.CreateSHA256Hash(invoker.Provider(), invoker.Model(), prompt)
}

func languageOrUnknown(language string) string {
	if language == "" {
		return "unspecified"
	}
	return language
}

func validateReviewInput(input view.ReviewInput) error {
	if err := input.Validate(); err != nil {
		return &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.RequiredParamsMissing,
			Message: exception.RequiredParamsMissingMsg,
			Params:  map[string]interface{}{"params": err.Error()},
		}
	}
	return nil
}

// NewRemoteReviewService forwards reviews to workflowName on the remote
// orchestration service.
func NewRemoteReviewService(workflowClient client.WorkflowClient, workflowName string, metrics *Metrics) ReviewService {
	return &remoteReviewServiceImpl{
		workflowClient: workflowClient,
		workflowName:   workflowName,
		metrics:        metrics,
	}
}

type remoteReviewServiceImpl struct {
	workflowClient client.WorkflowClient
	workflowName   string
	metrics        *Metrics
}

func (r remoteReviewServiceImpl) Mode() view.ServiceMode {
	return view.ModeRemote
}

func (r remoteReviewServiceImpl) Review(ctx context.Context, input view.ReviewInput) (*view.ApiResponse, error) {
	if err := validateReviewInput(input); err != nil {
		return nil, err
	}

	logger := reqctx.Logger(ctx)
	logger.Infof("Forwarding review to workflow %s on %s", r.workflowName, r.workflowClient.BaseURL())
	run, err := r.workflowClient.RunWorkflow(ctx, r.workflowName, input)
	if err != nil {
		logger.Warnf("Remote review failed: %s", err)
		r.metrics.ObserveReview(string(view.ModeRemote), OutcomeFailure)
		resp := apiErrorResponse(err)
		return &resp, nil
	}

	result, err := unwrapWorkflowRun(run)
	if err != nil {
		logger.Warnf("Remote review returned an invalid result: %s", err)
		r.metrics.ObserveReview(string(view.ModeRemote), OutcomeFailure)
		resp := apiErrorResponse(err)
		return &resp, nil
	}
	r.metrics.ObserveReview(string(view.ModeRemote), OutcomeSuccess)
	resp := view.SuccessResponse(result)
	return &resp, nil
}

func unwrapWorkflowRun(run *view.WorkflowRun) (*view.ReviewResult, error) {
	if run == nil || run.Result == nil || run.Result.Review == nil {
		return nil, invalidReviewResultError("review is missing in workflow result")
	}
	if err := run.Result.Review.Validate(); err != nil {
		return nil, invalidReviewResultError(violationsMessage(err))
	}
	return run.Result.Review, nil
}
