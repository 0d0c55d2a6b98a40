// internal/pipeline/processor_test.go
package pipeline

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/testutil"
	calculateassessmentscores "assessment-workers/internal/workers/assessment/calculate-assessment-scores"
	storeassessmentrecord "assessment-workers/internal/workers/assessment/store-assessment-record"
	validateassessmentdata "assessment-workers/internal/workers/assessment/validate-assessment-data"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeValidator struct {
	err error
}

func (f fakeValidator) Validate(_ context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return payload, nil
}

type fakeCalculator struct {
	fn func(record map[string]interface{}) (map[string]interface{}, error)
}

func (f fakeCalculator) Calculate(_ context.Context, record map[string]interface{}) (map[string]interface{}, error) {
	return f.fn(record)
}

// fakeSteps records what every downstream step received.
type fakeSteps struct {
	spreadsheet func() (models.StepResult, error)
	store       func() (models.StepResult, error)
	report      func() (models.StepResult, error)
	send        func() (models.StepResult, error)

	written     map[string]interface{}
	storedID    string
	storedAt    string
	sentTo      models.Contact
	sentFile    string
	indexedID   string
	publishedID string
	eventStatus string
}

func ok() (models.StepResult, error) {
	return models.StepResult{Status: models.StepStatusSuccess}, nil
}

func (f *fakeSteps) Write(_ context.Context, record map[string]interface{}) (models.StepResult, error) {
	f.written = record
	return call(f.spreadsheet)
}

func (f *fakeSteps) Store(_ context.Context, recordID, createdAt string, _ map[string]interface{}) (models.StepResult, error) {
	f.storedID, f.storedAt = recordID, createdAt
	return call(f.store)
}

func (f *fakeSteps) Generate(_ context.Context, _ map[string]interface{}) (models.StepResult, error) {
	if f.report != nil {
		return f.report()
	}
	return models.StepResult{
		Status:  models.StepStatusSuccess,
		Details: map[string]interface{}{DetailFilePath: "/tmp/report.pdf"},
	}, nil
}

func (f *fakeSteps) Send(_ context.Context, contact models.Contact, filePath string) (models.StepResult, error) {
	f.sentTo, f.sentFile = contact, filePath
	return call(f.send)
}

func (f *fakeSteps) Index(_ context.Context, recordID string, _ map[string]interface{}) (models.StepResult, error) {
	f.indexedID = recordID
	return ok()
}

func (f *fakeSteps) Publish(_ context.Context, recordID, overallStatus string, _ map[string]interface{}) (models.StepResult, error) {
	f.publishedID, f.eventStatus = recordID, overallStatus
	return ok()
}

func call(fn func() (models.StepResult, error)) (models.StepResult, error) {
	if fn == nil {
		return ok()
	}
	return fn()
}

func enrich(record map[string]interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for k, v := range record {
		out[k] = v
	}
	out[models.KeyCalculations] = map[string]interface{}{"ebitda_multiple": 4.1}
	return out, nil
}

func createTestProcessor(t *testing.T, fake *fakeSteps, withExtensions bool) *Processor {
	steps := Steps{
		Validator:   fakeValidator{},
		Calculator:  fakeCalculator{fn: enrich},
		Spreadsheet: fake,
		Store:       fake,
		Report:      fake,
		Sender:      fake,
	}
	if withExtensions {
		steps.Indexer = fake
		steps.Publisher = fake
	}

	p := NewProcessor(steps, logger.NewTestLogger(t))
	p.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	p.newID = func() string { return "rec-1" }
	return p
}

// ==========================
// Process
// ==========================

func TestProcess_AllStepsSucceed(t *testing.T) {
	fake := &fakeSteps{}
	p := createTestProcessor(t, fake, false)

	result, err := p.Process(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, "rec-1", result.RecordID)
	assert.Equal(t, "2024-03-01T10:00:00.000000", result.Timestamp)
	assert.Equal(t, []string{
		models.StepCalculations,
		models.StepSpreadsheet,
		models.StepDatabase,
		models.StepPDFGeneration,
		models.StepEmail,
	}, result.StepOrder)
	assert.Equal(t, models.OverallSuccess, result.OverallStatus)
	assert.Equal(t, 5, result.SuccessfulSteps)
	assert.Equal(t, 5, result.TotalSteps)

	assert.Contains(t, fake.written, models.KeyCalculations)
	assert.Equal(t, "rec-1", fake.storedID)
	assert.Equal(t, result.Timestamp, fake.storedAt)
	assert.Equal(t, "jane.doe@example.com", fake.sentTo.Email)
	assert.Equal(t, "Jane Doe", fake.sentTo.FullName())
	assert.Equal(t, "/tmp/report.pdf", fake.sentFile)
}

func TestProcess_ValidationFailureStopsPipeline(t *testing.T) {
	fake := &fakeSteps{}
	p := createTestProcessor(t, fake, true)
	p.steps.Validator = fakeValidator{err: &ValidationFailure{Details: "bad email", ValidationPath: "email"}}

	result, err := p.Process(context.Background(), testutil.SampleSubmission())

	var vf *ValidationFailure
	require.True(t, stderrors.As(err, &vf))
	assert.Equal(t, "email", vf.ValidationPath)
	assert.Nil(t, result)
	assert.Nil(t, fake.written)
	assert.Empty(t, fake.storedID)
}

func TestProcess_CalculationFailureContinuesWithValidatedRecord(t *testing.T) {
	fake := &fakeSteps{}
	p := createTestProcessor(t, fake, false)
	p.steps.Calculator = fakeCalculator{fn: func(map[string]interface{}) (map[string]interface{}, error) {
		return nil, stderrors.New("missing field")
	}}

	result, err := p.Process(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	calc := result.Steps[models.StepCalculations]
	assert.Equal(t, models.StepStatusError, calc.Status)
	assert.Equal(t, "missing field", calc.Error)

	require.NotNil(t, fake.written)
	assert.NotContains(t, fake.written, models.KeyCalculations)
	assert.Equal(t, models.OverallPartialSuccess, result.OverallStatus)
	assert.Equal(t, 4, result.SuccessfulSteps)
}

func TestProcess_ReportFailureSkipsEmail(t *testing.T) {
	tests := []struct {
		name   string
		report func() (models.StepResult, error)
	}{
		{
			name: "report error",
			report: func() (models.StepResult, error) {
				return models.StepResult{}, stderrors.New("disk full")
			},
		},
		{
			name:   "report without file path",
			report: ok,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSteps{report: tt.report}
			p := createTestProcessor(t, fake, false)

			result, err := p.Process(context.Background(), testutil.SampleSubmission())
			require.NoError(t, err)

			email := result.Steps[models.StepEmail]
			assert.Equal(t, models.StepStatusSkipped, email.Status)
			assert.Equal(t, ReasonNoReport, email.Reason)
			assert.Empty(t, fake.sentFile)
			assert.Equal(t, models.OverallPartialSuccess, result.OverallStatus)
			assert.Equal(t, 5, result.TotalSteps)
		})
	}
}

func TestProcess_SkippedEmailIsNotSuccessful(t *testing.T) {
	fake := &fakeSteps{send: func() (models.StepResult, error) {
		return models.StepResult{Status: models.StepStatusSkipped, Reason: "No recipient email provided"}, nil
	}}
	p := createTestProcessor(t, fake, false)

	result, err := p.Process(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, 4, result.SuccessfulSteps)
	assert.Equal(t, models.OverallPartialSuccess, result.OverallStatus)
}

func TestProcess_PanicIsIsolated(t *testing.T) {
	fake := &fakeSteps{spreadsheet: func() (models.StepResult, error) {
		panic("upstream exploded")
	}}
	p := createTestProcessor(t, fake, false)

	result, err := p.Process(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	excel := result.Steps[models.StepSpreadsheet]
	assert.Equal(t, models.StepStatusError, excel.Status)
	assert.Contains(t, excel.Error, "upstream exploded")
	assert.Equal(t, "rec-1", fake.storedID)
	assert.Equal(t, models.StepStatusSuccess, result.Steps[models.StepEmail].Status)
}

func TestProcess_OptionalSteps(t *testing.T) {
	fake := &fakeSteps{store: func() (models.StepResult, error) {
		return models.StepResult{}, stderrors.New("connection refused")
	}}
	p := createTestProcessor(t, fake, true)

	result, err := p.Process(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalSteps)
	assert.Equal(t, models.StepSearchIndex, result.StepOrder[5])
	assert.Equal(t, models.StepEvent, result.StepOrder[6])
	assert.Equal(t, "rec-1", fake.indexedID)
	assert.Equal(t, models.OverallPartialSuccess, fake.eventStatus)
	assert.Equal(t, 6, result.SuccessfulSteps)
}

func TestProcess_UnconfiguredSteps(t *testing.T) {
	fake := &fakeSteps{}
	p := createTestProcessor(t, fake, false)
	p.steps.Spreadsheet = nil
	p.steps.Sender = nil

	result, err := p.Process(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusSkipped, result.Steps[models.StepSpreadsheet].Status)
	assert.Equal(t, ReasonNotConfigured, result.Steps[models.StepSpreadsheet].Reason)
	assert.Equal(t, ReasonNotConfigured, result.Steps[models.StepEmail].Reason)
	assert.Equal(t, 5, result.TotalSteps)
	assert.Equal(t, 3, result.SuccessfulSteps)
}

func TestResponse(t *testing.T) {
	result := &models.ProcessingResult{
		RecordID:        "rec-1",
		OverallStatus:   models.OverallSuccess,
		SuccessfulSteps: 5,
		TotalSteps:      5,
	}

	resp := Response(result)
	assert.Equal(t, "Assessment processing completed", resp.Message)
	assert.Equal(t, "rec-1", resp.RecordID)
	assert.Same(t, result, resp.Results)
}

// ==========================
// Adapters
// ==========================

func TestValidatorAdapter(t *testing.T) {
	v := NewValidator(validateassessmentdata.NewHandler(validateassessmentdata.DefaultConfig(), logger.NewTestLogger(t)))

	record, err := v.Validate(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "Jane", record[models.KeyFirstName])

	invalid := testutil.SampleSubmission()
	invalid[models.KeyEmail] = "not-an-email"
	_, err = v.Validate(context.Background(), invalid)

	var vf *ValidationFailure
	require.True(t, stderrors.As(err, &vf))
	assert.Equal(t, "email", vf.ValidationPath)
	assert.NotEmpty(t, vf.Details)
	assert.NotEmpty(t, vf.Errors)

	_, err = v.Validate(context.Background(), map[string]interface{}{})
	require.True(t, stderrors.As(err, &vf))
	assert.Equal(t, "Request body cannot be empty", vf.Details)
	assert.Empty(t, vf.ValidationPath)
}

func TestCalculatorAdapter(t *testing.T) {
	c := NewCalculator(calculateassessmentscores.NewHandler(calculateassessmentscores.DefaultConfig(), logger.NewTestLogger(t)))

	record, err := c.Calculate(context.Background(), testutil.SampleSubmission())
	require.NoError(t, err)

	calc, ok := models.CalculationsFromRecord(record)
	require.True(t, ok)
	assert.InDelta(t, 66.7, calc.CompanyTransferabilityScore, 0.001)

	broken := testutil.SampleSubmission()
	delete(models.Section(broken, models.SectionBusinessGoals), models.FieldLastYearProfit)
	_, err = c.Calculate(context.Background(), broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business_goals_and_financials.last_year_profit")
}

// ==========================
// Duplicate submissions
// ==========================

func TestProcess_DuplicateSubmissionUsesStoredRecordID(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := storeassessmentrecord.DefaultConfig()
	cfg.DedupeEnabled = true
	store := storeassessmentrecord.NewHandler(cfg,
		database.NewPostgresFromDB(db),
		database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		logger.NewTestLogger(t))

	// only the first submission reaches the table
	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("rec-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	fake := &fakeSteps{}
	p := createTestProcessor(t, fake, true)
	p.steps.Store = NewRecordStore(store)
	ids := []string{"rec-1", "rec-2"}
	p.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := p.Process(ctx, testutil.SampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", first.RecordID)
	assert.Equal(t, false, first.Steps[models.StepDatabase].Details[DetailDuplicate])

	second, err := p.Process(ctx, testutil.SampleSubmission())
	require.NoError(t, err)

	stored := second.Steps[models.StepDatabase]
	assert.True(t, stored.Succeeded())
	assert.Equal(t, true, stored.Details[DetailDuplicate])
	assert.Equal(t, "rec-1", stored.Details[DetailRecordID])

	assert.Equal(t, "rec-1", second.RecordID)
	assert.Equal(t, "rec-1", Response(second).RecordID)
	assert.Equal(t, "rec-1", fake.indexedID)
	assert.Equal(t, "rec-1", fake.publishedID)
	assert.Equal(t, models.OverallSuccess, second.OverallStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}
