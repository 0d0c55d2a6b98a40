// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Assessment processing errors
const (
	ErrCodeAssessmentValidationFailed ErrorCode = "ASSESSMENT_VALIDATION_FAILED"
	ErrCodeCalculationFailed          ErrorCode = "CALCULATION_FAILED"
	ErrCodeMissingAssessmentField     ErrorCode = "MISSING_ASSESSMENT_FIELD"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateSubmission      ErrorCode = "DUPLICATE_SUBMISSION"

	ErrCodeSpreadsheetUploadFailed ErrorCode = "SPREADSHEET_UPLOAD_FAILED"
	ErrCodeReportGenerationFailed  ErrorCode = "REPORT_GENERATION_FAILED"
	ErrCodeEmailSendFailed         ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeIndexingFailed          ErrorCode = "INDEXING_FAILED"
	ErrCodeEventPublishFailed      ErrorCode = "EVENT_PUBLISH_FAILED"
)

// Generic codes
const (
	ErrCodeBusinessRuleViolation ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound      ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication        ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewAssessmentValidationFailedError creates a non-retryable schema validation error.
func NewAssessmentValidationFailedError(details, path string) *StandardError {
	e := newError(ErrCodeAssessmentValidationFailed, "Invalid assessment data", details, false)
	if path != "" {
		e.WithMetadata("validationPath", path)
	}
	return e
}

// NewCalculationFailedError creates a non-retryable calculation error.
func NewCalculationFailedError(err error) *StandardError {
	return newError(ErrCodeCalculationFailed, "Assessment calculation failed", errDetails(err), false)
}

// NewMissingAssessmentFieldError creates a non-retryable error for a record missing a required field.
func NewMissingAssessmentFieldError(field string) *StandardError {
	return newError(ErrCodeMissingAssessmentField, "Assessment is missing a required field", field, false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Failed to connect to database", errDetails(err), true)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to store assessment record", errDetails(err), true)
}

// NewDuplicateSubmissionError creates a non-retryable duplicate submission error.
func NewDuplicateSubmissionError(recordID string) *StandardError {
	return newError(ErrCodeDuplicateSubmission, "Assessment was already submitted",
		fmt.Sprintf("existing record: %s", recordID), false)
}

// NewSpreadsheetUploadFailedError creates a retryable spreadsheet upload error.
func NewSpreadsheetUploadFailedError(err error) *StandardError {
	return newError(ErrCodeSpreadsheetUploadFailed, "Failed to upload assessment to spreadsheet", errDetails(err), true)
}

// NewReportGenerationFailedError creates a non-retryable report rendering error.
func NewReportGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeReportGenerationFailed, "Failed to generate assessment report", errDetails(err), false)
}

// NewEmailSendFailedError creates a retryable email delivery error.
func NewEmailSendFailedError(err error) *StandardError {
	return newError(ErrCodeEmailSendFailed, "Failed to send assessment report email", errDetails(err), true)
}

// NewIndexingFailedError creates a retryable search indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return newError(ErrCodeIndexingFailed, "Failed to index assessment", errDetails(err), true)
}

// NewEventPublishFailedError creates a retryable event publish error.
func NewEventPublishFailedError(err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Failed to publish assessment event", errDetails(err), true)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRuleViolation, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by
// boundary events in the assessment process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeAssessmentValidationFailed: "ASSESSMENT_VALIDATION_FAILED",
	ErrCodeCalculationFailed:          "CALCULATION_FAILED",
	ErrCodeMissingAssessmentField:     "CALCULATION_FAILED",
	ErrCodeDatabaseConnectionFailed:   "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:       "DATABASE_INSERT_FAILED",
	ErrCodeDuplicateSubmission:        "DUPLICATE_SUBMISSION",
	ErrCodeSpreadsheetUploadFailed:    "SPREADSHEET_UPLOAD_FAILED",
	ErrCodeReportGenerationFailed:     "REPORT_GENERATION_FAILED",
	ErrCodeEmailSendFailed:            "EMAIL_SEND_FAILED",
	ErrCodeIndexingFailed:             "INDEXING_FAILED",
	ErrCodeEventPublishFailed:         "EVENT_PUBLISH_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeEmailSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeSpreadsheetUploadFailed,
		ErrCodeIndexingFailed,
		ErrCodeEventPublishFailed,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CALCULATION"):
		return "CALCULATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEXING"):
		return "SEARCH"
	case strings.Contains(codeStr, "EMAIL") || strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SPREADSHEET") || strings.Contains(codeStr, "REPORT"):
		return "DOCUMENT"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "INTEGRATION"
	default:
		return "OTHER"
	}
}
