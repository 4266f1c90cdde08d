package service

import (
	"strings"
	"testing"

	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/stretchr/testify/assert"
)

func TestBuildPromptFullInput(t *testing.T) {
	prompt := BuildPrompt(view.ReviewInput{
		Code:     "func add(a, b int) int { return a + b }",
		Language: "go",
		Filename: "math.go",
		Context:  "helper used by the billing module",
	})

	assert.True(t, strings.HasPrefix(prompt, "You are an expert code reviewer"))
	assert.True(t, strings.HasSuffix(prompt,
		"Please review the following code:\n\nFilename: math.go\nLanguage: go\n\nContext: helper used by the billing module\n\n```go\nfunc add(a, b int) int { return a + b }\n```"))
}

func TestBuildPromptOmitsEmptyFields(t *testing.T) {
	prompt := BuildPrompt(view.ReviewInput{Code: "print(1)"})

	assert.NotContains(t, prompt, "Filename:")
	assert.NotContains(t, prompt, "Language:")
	assert.NotContains(t, prompt, "Context:")
	assert.True(t, strings.HasSuffix(prompt, "Please review the following code:\n\n```\nprint(1)\n```"))
}

func TestBuildPromptLanguageOnly(t *testing.T) {
	prompt := BuildPrompt(view.ReviewInput{Code: "x = 1", Language: "python"})
	assert.True(t, strings.HasSuffix(prompt, "Please review the following code:\nLanguage: python\n\n```python\nx = 1\n```"))
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	input := view.ReviewInput{Code: "a", Language: "js", Filename: "a.js", Context: "c"}
	assert.Equal(t, BuildPrompt(input), BuildPrompt(input))
}

func TestBuildPromptListsFocusAreas(t *testing.T) {
	prompt := BuildPrompt(view.ReviewInput{Code: "a"})
	for _, area := range []string{"Security vulnerabilities", "Performance optimizations", "Proper error handling", "Be constructive and specific in your feedback."} {
		assert.Contains(t, prompt, area)
	}
}
