// internal/workers/assessment/calculate-assessment-scores/handler_test.go
package calculateassessmentscores

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

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(DefaultConfig(), logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestExecute(t *testing.T) {
	tests := []struct {
		name           string
		input          func() *Input
		wantErrCode    errors.ErrorCode
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "retail submission",
			input: func() *Input { return &Input{Assessment: testutil.SampleSubmission()} },
			validateOutput: func(t *testing.T, output *Output) {
				calc := output.AssessmentCalculations
				assert.Equal(t, 4.1, calc.EBITDAMultiple)
				assert.Equal(t, 15.0, calc.EBITDAMargin)
				assert.Equal(t, 66.7, calc.CompanyTransferabilityScore)
				assert.Equal(t, 50.0, calc.PersonalReadinessScore)

				attached, ok := models.CalculationsFromRecord(output.Assessment)
				require.True(t, ok)
				assert.Equal(t, calc, attached)
				assert.Equal(t, "Jane", output.Assessment[models.KeyFirstName])
			},
		},
		{
			name: "missing personal section",
			input: func() *Input {
				record := testutil.SampleSubmission()
				delete(models.Sections(record), models.SectionPersonalReadiness)
				return &Input{Assessment: record}
			},
			wantErrCode: errors.ErrCodeMissingAssessmentField,
		},
		{
			name: "missing revenue",
			input: func() *Input {
				record := testutil.SampleSubmission()
				delete(models.Section(record, models.SectionBusinessGoals), models.FieldLastYearRevenue)
				return &Input{Assessment: record}
			},
			wantErrCode: errors.ErrCodeMissingAssessmentField,
		},
		{
			name: "non numeric revenue",
			input: func() *Input {
				record := testutil.SampleSubmission()
				models.Section(record, models.SectionBusinessGoals)[models.FieldLastYearRevenue] = "lots"
				return &Input{Assessment: record}
			},
			wantErrCode: errors.ErrCodeCalculationFailed,
		},
		{
			name:        "empty assessment",
			input:       func() *Input { return &Input{} },
			wantErrCode: errors.ErrCodeMissingAssessmentField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := createTestHandler(t).Execute(context.Background(), tt.input())
			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.Nil(t, output)
				assert.Equal(t, tt.wantErrCode, errors.Normalize(err).Code)
				return
			}

			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func TestExecute_MissingFieldDetails(t *testing.T) {
	record := testutil.SampleSubmission()
	delete(models.Section(record, models.SectionBusinessGoals), models.FieldLastYearProfit)

	_, err := createTestHandler(t).Execute(context.Background(), &Input{Assessment: record})
	require.Error(t, err)
	assert.Equal(t, "business_goals_and_financials.last_year_profit", errors.Normalize(err).Details)
}

func TestExecute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := createTestHandler(t).Execute(ctx, &Input{Assessment: testutil.SampleSubmission()})
	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Handle
// ==========================

func TestHandle_CompletesWithCalculations(t *testing.T) {
	client := testutil.NewJobClient()
	job := testutil.NewJob(10, TaskType, map[string]interface{}{"assessment": testutil.SampleSubmission()})

	createTestHandler(t).Handle(client, job)

	require.Len(t, client.Completed(), 1)
	vars := client.CompletedVariables()
	calc, ok := vars["assessmentCalculations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 66.7, calc["company_transferability_score"])

	assessment, ok := vars["assessment"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, assessment, models.KeyCalculations)
}

func TestHandle_ThrowsOnMissingSection(t *testing.T) {
	record := testutil.SampleSubmission()
	delete(models.Sections(record), models.SectionBusinessPerformance)

	client := testutil.NewJobClient()
	createTestHandler(t).Handle(client, testutil.NewJob(11, TaskType, map[string]interface{}{"assessment": record}))

	assert.Empty(t, client.Completed())
	assert.Empty(t, client.Failed())
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "CALCULATION_FAILED", client.Thrown()[0].ErrorCode)
	assert.Contains(t, client.Thrown()[0].Variables, `"originalErrorCode":"MISSING_ASSESSMENT_FIELD"`)
}
