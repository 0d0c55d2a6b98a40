// internal/models/pipeline.go
package models

import "time"

// TimestampLayout is the microsecond ISO-8601 form used for record and
// artifact timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Timestamp formats t in UTC using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Step statuses
const (
	StepStatusSuccess = "success"
	StepStatusError   = "error"
	StepStatusSkipped = "skipped"
)

// Overall statuses
const (
	OverallSuccess        = "success"
	OverallPartialSuccess = "partial_success"
)

// Pipeline step names, in execution order.
const (
	StepCalculations  = "calculations"
	StepSpreadsheet   = "excel"
	StepDatabase      = "database"
	StepPDFGeneration = "pdf_generation"
	StepEmail         = "email"
	StepSearchIndex   = "search_index"
	StepEvent         = "event"
)

// StepResult is the outcome of a single pipeline step. Details carries the
// step-specific payload (file path, message id, upstream response, ...).
type StepResult struct {
	Status  string                 `json:"status"`
	Error   string                 `json:"error,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (s StepResult) Succeeded() bool {
	return s.Status == StepStatusSuccess
}

// ProcessingResult tracks every step executed for one submission.
type ProcessingResult struct {
	RecordID        string                `json:"record_id"`
	Timestamp       string                `json:"timestamp"`
	Steps           map[string]StepResult `json:"steps"`
	StepOrder       []string              `json:"step_order"`
	OverallStatus   string                `json:"overall_status"`
	SuccessfulSteps int                   `json:"successful_steps"`
	TotalSteps      int                   `json:"total_steps"`
}

// ProcessingResponse is the body returned to API callers.
type ProcessingResponse struct {
	Message         string            `json:"message"`
	RecordID        string            `json:"record_id"`
	OverallStatus   string            `json:"overall_status"`
	SuccessfulSteps int               `json:"successful_steps"`
	TotalSteps      int               `json:"total_steps"`
	Results         *ProcessingResult `json:"results"`
}
