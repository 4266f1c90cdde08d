package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

type ReviewInput struct {
	Code     string `json:"code" jsonschema:"minLength=1" jsonschema_description:"Source code to review"`
	Language string `json:"language,omitempty" jsonschema_description:"Programming language of the code"`
	Filename string `json:"filename,omitempty"`
	Context  string `json:"context,omitempty" jsonschema_description:"Free-form context about what the code does"`
}

// Validate reports the first missing required field.
func (r ReviewInput) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code")
	}
	return nil
}

type ReviewResult struct {
	OverallRating   int      `json:"overall_rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall code quality rating from 1 to 10"`
	Issues          []Issue  `json:"issues"`
	PositiveAspects []string `json:"positive_aspects"`
	Summary         string   `json:"summary"`

	// set by UnmarshalJSON, reported by Validate
	ratingViolation  error
	decodeViolations []error
}

type Issue struct {
	Type        IssueType     `json:"type" jsonschema:"enum=bug,enum=security,enum=performance,enum=style,enum=maintainability"`
	Severity    IssueSeverity `json:"severity" jsonschema:"enum=low,enum=medium,enum=high,enum=critical"`
	Line        *int          `json:"line,omitempty" jsonschema_description:"Line number the issue refers to"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion"`

	decodeViolations []string
}

type IssueType string

const (
	IssueTypeBug             IssueType = "bug"
	IssueTypeSecurity        IssueType = "security"
	IssueTypePerformance     IssueType = "performance"
	IssueTypeStyle           IssueType = "style"
	IssueTypeMaintainability IssueType = "maintainability"
)

func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeBug, IssueTypeSecurity, IssueTypePerformance, IssueTypeStyle, IssueTypeMaintainability:
		return true
	}
	return false
}

type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

func (s IssueSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

const (
	MinOverallRating = 1
	MaxOverallRating = 10
)

// Validate checks the result against the declared output schema and returns
// every violation found. Out-of-range values are never adjusted.
func (r ReviewResult) Validate() error {
	var errs []error
	if r.ratingViolation != nil {
		errs = append(errs, r.ratingViolation)
	} else if r.OverallRating < MinOverallRating || r.OverallRating > MaxOverallRating {
		errs = append(errs, fmt.Errorf("overall_rating %d is out of range [%d,%d]", r.OverallRating, MinOverallRating, MaxOverallRating))
	}
	if r.Issues == nil {
		errs = append(errs, errors.New("issues is required"))
	}
	if r.PositiveAspects == nil {
		errs = append(errs, errors.New("positive_aspects is required"))
	}
	errs = append(errs, r.decodeViolations...)
	for i, issue := range r.Issues {
		if !issue.Type.Valid() {
			errs = append(errs, fmt.Errorf("issues[%d].type %q is not one of bug, security, performance, style, maintainability", i, issue.Type))
		}
		if !issue.Severity.Valid() {
			errs = append(errs, fmt.Errorf("issues[%d].severity %q is not one of low, medium, high, critical", i, issue.Severity))
		}
		for _, violation := range issue.decodeViolations {
			errs = append(errs, fmt.Errorf("issues[%d].%s", i, violation))
		}
	}
	return errors.Join(errs...)
}

// reviewResultJson and issueJson mirror the wire shape with pointers, so that
// an absent field differs from an empty one, and numbers are read as float64
// so that 7.0 is accepted as an integer.
type reviewResultJson struct {
	OverallRating   *float64 `json:"overall_rating"`
	Issues          []Issue  `json:"issues"`
	PositiveAspects []string `json:"positive_aspects"`
	Summary         *string  `json:"summary"`
}

type issueJson struct {
	Type        IssueType     `json:"type"`
	Severity    IssueSeverity `json:"severity"`
	Line        *float64      `json:"line"`
	Description *string       `json:"description"`
	Suggestion  *string       `json:"suggestion"`
}

// UnmarshalJSON records missing required fields and non-integral numbers
// instead of failing, so that Validate can report them all.
func (r *ReviewResult) UnmarshalJSON(data []byte) error {
	var raw reviewResultJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ReviewResult{Issues: raw.Issues, PositiveAspects: raw.PositiveAspects}
	switch {
	case raw.OverallRating == nil:
		r.ratingViolation = errors.New("overall_rating is required")
	case *raw.OverallRating < MinOverallRating || *raw.OverallRating > MaxOverallRating:
		r.ratingViolation = fmt.Errorf("overall_rating %v is out of range [%d,%d]", *raw.OverallRating, MinOverallRating, MaxOverallRating)
	case !isWholeNumber(*raw.OverallRating):
		r.ratingViolation = fmt.Errorf("overall_rating %v is not an integer", *raw.OverallRating)
	default:
		r.OverallRating = int(*raw.OverallRating)
	}
	if raw.Summary == nil {
		r.decodeViolations = append(r.decodeViolations, errors.New("summary is required"))
	} else {
		r.Summary = *raw.Summary
	}
	return nil
}

func (i *Issue) UnmarshalJSON(data []byte) error {
	var raw issueJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Issue{Type: raw.Type, Severity: raw.Severity}
	if raw.Line != nil {
		if isWholeNumber(*raw.Line) {
			line := int(*raw.Line)
			i.Line = &line
		} else {
			i.decodeViolations = append(i.decodeViolations, fmt.Sprintf("line %v is not an integer", *raw.Line))
		}
	}
	if raw.Description == nil {
		i.decodeViolations = append(i.decodeViolations, "description is required")
	} else {
		i.Description = *raw.Description
	}
	if raw.Suggestion == nil {
		i.decodeViolations = append(i.decodeViolations, "suggestion is required")
	} else {
		i.Suggestion = *raw.Suggestion
	}
	return nil
}

func isWholeNumber(v float64) bool {
	return v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32
}

type ApiResponse struct {
	Success bool          `json:"success"`
	Data    *ReviewResult `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Code    string        `json:"code,omitempty"`
}

func SuccessResponse(result *ReviewResult) ApiResponse {
	return ApiResponse{Success: true, Data: result}
}

func ErrorResponse(err error) ApiResponse {
	return ApiResponse{Success: false, Error: err.Error()}
}
