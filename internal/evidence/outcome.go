package evidence

import "time"

// Status is the result of one recorded step.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepOutcome is the record produced for every page action.
type StepOutcome struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	Err         string    `json:"error,omitempty"`
	// Screenshot is empty when capture failed or the step never ran.
	Screenshot string `json:"screenshot,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// Duration is the wall time the step took.
func (o StepOutcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}

// RunSummary describes a whole scenario run.
type RunSummary struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
	Expected string    `json:"expected"`
	Actual   string    `json:"actual"`
	// Err is the error that ended the run, empty on success.
	Err string `json:"error,omitempty"`
	// FinalScreenshot is the page as it was left, taken just before release.
	FinalScreenshot string `json:"final_screenshot,omitempty"`
}

// Succeeded reports whether the run ended without error.
func (s RunSummary) Succeeded() bool {
	return s.Err == "" && s.Failed == 0
}

// Observer receives one callback per completed step and one when the run ends.
// Callbacks are delivered synchronously on the scenario goroutine.
type Observer interface {
	StepCompleted(StepOutcome)
	RunFinished(RunSummary)
}
