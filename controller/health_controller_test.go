package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/stretchr/testify/assert"
)

func TestDocsListsWorkflows(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthController(view.ModeStandalone, []string{"a-review", "b-review"}, make(chan bool)).
		Docs(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Code Review Agent (standalone mode)")
	assert.Contains(t, rec.Body.String(), "## Registered workflows\n\n- a-review\n- b-review")

	rec = httptest.NewRecorder()
	NewHealthController(view.ModeRemote, nil, make(chan bool)).
		Docs(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rec.Body.String(), "Registered workflows")
}
