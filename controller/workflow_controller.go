package controller

import (
	"errors"
	"net/http"

	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	"github.com/Netcracker/qubership-code-review-agent/service"
)

type WorkflowController interface {
	GetWorkflow(w http.ResponseWriter, r *http.Request)
	ExecuteWorkflow(w http.ResponseWriter, r *http.Request)
}

func NewWorkflowController(workflowRegistry service.WorkflowRegistry) WorkflowController {
	return &workflowControllerImpl{
		workflowRegistry: workflowRegistry,
	}
}

type workflowControllerImpl struct {
	workflowRegistry service.WorkflowRegistry
}

func (c workflowControllerImpl) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	name, err := getUnescapedStringParam(r, "name")
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidURLEscape,
			Message: exception.InvalidURLEscapeMsg,
			Params:  map[string]interface{}{"param": "name"},
			Debug:   err.Error(),
		})
		return
	}

	descriptor, err := c.workflowRegistry.GetWorkflow(name)
	if err != nil {
		respondWithError(w, "Failed to get workflow", err)
		return
	}
	respondWithJson(w, http.StatusOK, descriptor)
}

func (c workflowControllerImpl) ExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := reqctx.MakeRequestContext(r)
	name, err := getUnescapedStringParam(r, "name")
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidURLEscape,
			Message: exception.InvalidURLEscapeMsg,
			Params:  map[string]interface{}{"param": "name"},
			Debug:   err.Error(),
		})
		return
	}

	input, err := readReviewInput(w, r)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error(),
		})
		return
	}

	run, err := c.workflowRegistry.RunWorkflow(ctx, name, *input)
	if err != nil {
		var customError *exception.CustomError
		if run == nil || (errors.As(err, &customError) && customError.Code == exception.MissingCredential) {
			respondWithError(w, "Failed to run workflow", err)
			return
		}
		respondWithJson(w, http.StatusBadGateway, run)
		return
	}
	respondWithJson(w, http.StatusOK, run)
}
