// internal/workers/assessment/validate-assessment-data/handler_test.go
package validateassessmentdata

import (
	"context"
	"testing"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

func createTestConfig() *Config {
	return DefaultConfig()
}

func createTestHandler(t *testing.T, cfg *Config) *Handler {
	return NewHandler(cfg, logger.NewTestLogger(t))
}

func invalidSubmission() map[string]interface{} {
	payload := testutil.SampleSubmission()
	payload[models.KeyEmail] = "not-an-email"
	return payload
}

// ==========================
// Config
// ==========================

func TestConfig_Validate(t *testing.T) {
	cfg := createTestConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = createTestConfig()
	cfg.MaxJobsActive = 0
	assert.Error(t, cfg.Validate())
}

// ==========================
// Execute
// ==========================

func TestExecute(t *testing.T) {
	tests := []struct {
		name           string
		failOnInvalid  bool
		input          *Input
		wantErrCode    errors.ErrorCode
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "valid submission",
			input: &Input{Assessment: testutil.SampleSubmission()},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, output.IsValid)
				assert.Empty(t, output.ValidationErrors)
				assert.Empty(t, output.Details)
				assert.Equal(t, "Jane", output.Assessment[models.KeyFirstName])
			},
		},
		{
			name:  "invalid submission completes with errors",
			input: &Input{Assessment: invalidSubmission()},
			validateOutput: func(t *testing.T, output *Output) {
				assert.False(t, output.IsValid)
				require.Len(t, output.ValidationErrors, 1)
				assert.Equal(t, "email", output.ValidationPath)
				assert.NotEmpty(t, output.Details)
			},
		},
		{
			name:          "invalid submission fails when configured",
			failOnInvalid: true,
			input:         &Input{Assessment: invalidSubmission()},
			wantErrCode:   errors.ErrCodeAssessmentValidationFailed,
		},
		{
			name:        "empty assessment",
			input:       &Input{},
			wantErrCode: errors.ErrCodeAssessmentValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.FailOnInvalid = tt.failOnInvalid
			h := createTestHandler(t, cfg)

			output, err := h.Execute(context.Background(), tt.input)
			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrCode, errors.Normalize(err).Code)
				assert.False(t, errors.Normalize(err).Retryable)
				return
			}

			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func TestExecute_FillsMetadataDefaults(t *testing.T) {
	payload := testutil.SampleSubmission()
	delete(payload, models.KeyMetadata)

	output, err := createTestHandler(t, createTestConfig()).Execute(context.Background(), &Input{Assessment: payload})
	require.NoError(t, err)

	metadata, ok := output.Assessment[models.KeyMetadata].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "web", metadata["source"])
	assert.NotEmpty(t, metadata["date_sent"])
}

// ==========================
// Handle
// ==========================

func TestHandle_CompletesJob(t *testing.T) {
	client := testutil.NewJobClient()
	job := testutil.NewJob(1, TaskType, map[string]interface{}{"assessment": testutil.SampleSubmission()})

	createTestHandler(t, createTestConfig()).Handle(client, job)

	require.Len(t, client.Completed(), 1)
	assert.Empty(t, client.Thrown())
	assert.Equal(t, int64(1), client.Completed()[0].JobKey)

	vars := client.CompletedVariables()
	assert.Equal(t, true, vars["isValid"])
	assert.NotNil(t, vars["assessment"])
}

func TestHandle_ThrowsValidationError(t *testing.T) {
	cfg := createTestConfig()
	cfg.FailOnInvalid = true
	client := testutil.NewJobClient()
	job := testutil.NewJob(2, TaskType, map[string]interface{}{"assessment": invalidSubmission()})

	createTestHandler(t, cfg).Handle(client, job)

	assert.Empty(t, client.Completed())
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "ASSESSMENT_VALIDATION_FAILED", client.Thrown()[0].ErrorCode)
	assert.Contains(t, client.Thrown()[0].Variables, `"validationPath":"email"`)
}

func TestHandle_MalformedVariables(t *testing.T) {
	client := testutil.NewJobClient()
	job := testutil.NewJob(3, TaskType, map[string]interface{}{})
	job.Variables = "{not json"

	createTestHandler(t, createTestConfig()).Handle(client, job)

	assert.Empty(t, client.Completed())
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "ASSESSMENT_VALIDATION_FAILED", client.Thrown()[0].ErrorCode)
}
