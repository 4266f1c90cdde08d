package controller

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	"github.com/Netcracker/qubership-code-review-agent/service"
	"github.com/Netcracker/qubership-code-review-agent/view"
)

type ReviewController interface {
	ReviewCode(w http.ResponseWriter, r *http.Request)
}

func NewReviewController(reviewService service.ReviewService) ReviewController {
	return &reviewControllerImpl{
		reviewService: reviewService,
	}
}

type reviewControllerImpl struct {
	reviewService service.ReviewService
}

func (c reviewControllerImpl) ReviewCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithText(w, http.StatusMethodNotAllowed, exception.MethodNotAllowedMsg)
		return
	}
	ctx := reqctx.MakeRequestContext(r)

	input, err := readReviewInput(w, r)
	if err != nil {
		reqctx.Logger(ctx).Debugf("Failed to read review request: %s", err)
		respondWithJson(w, http.StatusBadRequest, view.ApiResponse{
			Success: false,
			Error:   exception.BadRequestBodyMsg,
			Code:    exception.BadRequestBody,
		})
		return
	}

	resp, err := c.reviewService.Review(ctx, *input)
	if err != nil {
		respondWithApiError(w, err)
		return
	}
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadRequest
	}
	respondWithJson(w, status, resp)
}

func readReviewInput(w http.ResponseWriter, r *http.Request) (*view.ReviewInput, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		return nil, err
	}
	var input view.ReviewInput
	if err = json.Unmarshal(body, &input); err != nil {
		return nil, err
	}
	return &input, nil
}
