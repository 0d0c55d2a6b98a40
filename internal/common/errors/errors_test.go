// internal/common/errors/errors_test.go
package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "retryable insert failure",
			err:         NewDatabaseInsertFailedError(fmt.Errorf("connection reset")),
			wantCode:    "DATABASE_INSERT_FAILED",
			wantRetries: 3,
		},
		{
			name:        "validation is never retried",
			err:         NewAssessmentValidationFailedError("bad email", "email"),
			wantCode:    "ASSESSMENT_VALIDATION_FAILED",
			wantRetries: 0,
		},
		{
			name:        "missing field shares the calculation boundary",
			err:         NewMissingAssessmentFieldError("last_year_revenue"),
			wantCode:    "CALCULATION_FAILED",
			wantRetries: 0,
		},
		{
			name:        "unmapped code falls back to itself",
			err:         NewBusinessRuleError("rule", "details"),
			wantCode:    "BUSINESS_RULE_VIOLATION",
			wantRetries: 0,
		},
		{
			name:        "spreadsheet upload gets partial retries",
			err:         NewSpreadsheetUploadFailedError(fmt.Errorf("503")),
			wantCode:    "SPREADSHEET_UPLOAD_FAILED",
			wantRetries: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestValidationPathIsExposedAsVariable(t *testing.T) {
	bpmn := ConvertToBPMNError(NewAssessmentValidationFailedError("too long", "first_name"))
	assert.Equal(t, "first_name", bpmn.ToErrorVariables()["validationPath"])
}

func TestNormalize(t *testing.T) {
	std := NewIndexingFailedError(fmt.Errorf("boom"))
	wrapped := fmt.Errorf("index step: %w", std)
	assert.Same(t, std, Normalize(wrapped))

	timeout := Normalize(fmt.Errorf("slow: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	plain := Normalize(fmt.Errorf("plain"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "plain", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeAssessmentValidationFailed: "VALIDATION",
		ErrCodeMissingAssessmentField:     "VALIDATION",
		ErrCodeCalculationFailed:          "CALCULATION",
		ErrCodeDatabaseInsertFailed:       "DATABASE",
		ErrCodeDuplicateSubmission:        "DATABASE",
		ErrCodeIndexingFailed:             "SEARCH",
		ErrCodeEmailSendFailed:            "NOTIFICATION",
		ErrCodeReportGenerationFailed:     "DOCUMENT",
		ErrCodeTimeout:                    "INTEGRATION",
		ErrorCode("SOMETHING"):            "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeEmailSendFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeEventPublishFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateSubmission))
	assert.False(t, IsRetryableErrorCode(ErrCodeReportGenerationFailed))
}

func TestStandardErrorString(t *testing.T) {
	err := NewDuplicateSubmissionError("rec-1")
	require.Error(t, err)
	assert.Equal(t, "StandardError[DUPLICATE_SUBMISSION]: Assessment was already submitted", err.Error())
	assert.Contains(t, err.Details, "rec-1")
	assert.False(t, err.Timestamp.IsZero())
}
