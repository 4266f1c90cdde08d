package view

type WorkflowResult struct {
	Review      *ReviewResult `json:"review"`
	RawResponse string        `json:"rawResponse"`
}

type WorkflowRunStatus string

const WRSuccess WorkflowRunStatus = "success"
const WRFailed WorkflowRunStatus = "failed"

type WorkflowRun struct {
	RunId    string            `json:"runId"`
	Workflow string            `json:"workflow"`
	StepId   string            `json:"stepId"`
	Status   WorkflowRunStatus `json:"status"`
	Result   *WorkflowResult   `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type WorkflowDescriptor struct {
	Name          string      `json:"name"`
	Steps         []string    `json:"steps"`
	TriggerSchema interface{} `json:"triggerSchema"`
}
