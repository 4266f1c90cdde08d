package service

import (
	"strings"

	"github.com/Netcracker/qubership-code-review-agent/view"
)

const reviewerInstructions = `You are an expert code reviewer with years of experience across multiple programming languages.

Your task is to:
1. Analyze the provided code for potential issues
2. Look for bugs, security vulnerabilities, performance problems, and maintainability concerns
3. Identify positive aspects of the code
4. Provide constructive feedback and suggestions

Focus on:
- Code quality and best practices
- Security vulnerabilities
- Performance optimizations
- Readability and maintainability
- Proper error handling
- Documentation and comments

Be constructive and specific in your feedback.

Please review the following code:`

// BuildPrompt renders the review prompt. Empty optional fields are omitted.
func BuildPrompt(input view.ReviewInput) string {
	var b strings.Builder
	b.WriteString(reviewerInstructions)

	if input.Filename != "" {
		b.WriteString("\n\nFilename: ")
		b.WriteString(input.Filename)
	}
	if input.Language != "" {
		b.WriteString("\nLanguage: ")
		b.WriteString(input.Language)
	}
	if input.Context != "" {
		b.WriteString("\n\nContext: ")
		b.WriteString(input.Context)
	}

	b.WriteString("\n\n```")
	b.WriteString(input.Language)
	b.WriteString("\n")
	b.WriteString(input.Code)
	b.WriteString("\n```")

	return b.String()
}
