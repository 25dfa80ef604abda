package entity

import "time"

// Script is an ordered list of tool invocations run against one browser session.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Tool            ToolName               `yaml:"tool"`
	Args            map[string]interface{} `yaml:"args"`
	ContinueOnError bool                   `yaml:"continue_on_error"`
}

type StepStatus string

const (
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

type StepResult struct {
	Index    int
	Tool     ToolName
	Status   StepStatus
	Output   string
	Error    string
	Duration time.Duration
}

type RunResult struct {
	RunID   string
	Script  string
	Steps   []StepResult
	Failed  int
	Elapsed time.Duration
}

// Succeeded reports whether every executed step finished without error.
func (r *RunResult) Succeeded() bool {
	return r.Failed == 0
}
