package controller

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/view"
)

const usageDocs = `# Code Review Agent (%s mode)

## API Endpoints

### POST /api/review
Review code and get detailed analysis.

Request body:
{
  "code": "your code here",
  "language": "javascript",
  "filename": "example.js",
  "context": "Optional context"
}

### GET /health
Health check endpoint.

### GET /api/workflows/{name}
Workflow descriptor with the trigger schema.

### POST /api/workflows/{name}/execute
Run a review workflow with the same request body as /api/review.

### GET /metrics
Prometheus metrics.

### Example usage:
curl -X POST http://localhost:8080/api/review \
  -H "Content-Type: application/json" \
  -d '{"code": "function add(a, b) { return a + b; }", "language": "javascript"}'`

type HealthController interface {
	Health(w http.ResponseWriter, r *http.Request)
	HandleLiveRequest(w http.ResponseWriter, r *http.Request)
	HandleReadyRequest(w http.ResponseWriter, r *http.Request)
	Docs(w http.ResponseWriter, r *http.Request)
	Default(w http.ResponseWriter, r *http.Request)
}

// NewHealthController reports not ready until a value is received from readyChan.
// The docs page lists the given workflow names.
func NewHealthController(mode view.ServiceMode, workflows []string, readyChan chan bool) HealthController {
	c := &healthControllerImpl{mode: mode, workflows: workflows}
	go func() {
		ready := <-readyChan
		c.ready.Store(ready)
	}()
	return c
}

type healthControllerImpl struct {
	mode      view.ServiceMode
	workflows []string
	ready     atomic.Bool
}

func (h *healthControllerImpl) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJson(w, http.StatusOK, view.HealthResponse{
		Status:    view.HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Mode:      h.mode,
	})
}

func (h *healthControllerImpl) HandleLiveRequest(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *healthControllerImpl) HandleReadyRequest(w http.ResponseWriter, r *http.Request) {
	if h.ready.Load() {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *healthControllerImpl) Docs(w http.ResponseWriter, r *http.Request) {
	var docs strings.Builder
	docs.WriteString(fmt.Sprintf(usageDocs, h.mode))
	if len(h.workflows) > 0 {
		docs.WriteString("\n\n## Registered workflows\n")
		for _, name := range h.workflows {
			docs.WriteString("\n- " + name)
		}
	}
	respondWithText(w, http.StatusOK, docs.String())
}

func (h *healthControllerImpl) Default(w http.ResponseWriter, r *http.Request) {
	respondWithText(w, http.StatusOK, fmt.Sprintf("Code Review Agent (%s mode)", h.mode))
}
