// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/pipeline"
	"assessment-workers/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, payload map[string]interface{}) (*models.ProcessingResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProcessingResult), args.Error(1)
}

type panicProcessor struct{}

func (panicProcessor) Process(context.Context, map[string]interface{}) (*models.ProcessingResult, error) {
	panic("boom")
}

// ==========================
// Helpers
// ==========================

func createTestHandler(t *testing.T, p Processor) *Handler {
	h := NewHandler(p, "", logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return h
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, AssessmentsPath, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func sampleResult() *models.ProcessingResult {
	return &models.ProcessingResult{
		RecordID:  "rec-1",
		Timestamp: "2024-03-01T10:00:00.000000",
		Steps: map[string]models.StepResult{
			models.StepCalculations: {Status: models.StepStatusSuccess},
			models.StepEmail:        {Status: models.StepStatusSkipped, Reason: pipeline.ReasonNoReport},
		},
		StepOrder:       []string{models.StepCalculations, models.StepEmail},
		OverallStatus:   models.OverallPartialSuccess,
		SuccessfulSteps: 1,
		TotalSteps:      2,
	}
}

// ==========================
// Request validation
// ==========================

func TestServeHTTP_BadRequests(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"missing body", "", "Request body is required"},
		{"whitespace body", "  \n", "Request body is required"},
		{"invalid json", "{not json", "Invalid JSON in request body"},
		{"empty object", "{}", "Request body cannot be empty"},
		{"null", "null", "Request body cannot be empty"},
		{"empty array", "[]", "Request body cannot be empty"},
		{"non-object", "[1,2]", "Invalid assessment data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &MockProcessor{}
			rec := serve(createTestHandler(t, processor), http.MethodPost, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assertCORS(t, rec)
			assert.Equal(t, tt.wantError, decode(t, rec)["error"])
			processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
		})
	}
}

func TestServeHTTP_ValidationFailure(t *testing.T) {
	tests := []struct {
		name     string
		failure  *pipeline.ValidationFailure
		wantPath interface{}
	}{
		{
			name:     "field path",
			failure:  &pipeline.ValidationFailure{Details: "Does not match format 'email'", ValidationPath: "email"},
			wantPath: "email",
		},
		{
			name:     "root",
			failure:  &pipeline.ValidationFailure{Details: "first_name is required"},
			wantPath: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &MockProcessor{}
			processor.On("Process", mock.Anything, mock.Anything).Return(nil, tt.failure)

			rec := serve(createTestHandler(t, processor), http.MethodPost, string(testutil.SampleSubmissionJSON()))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "Invalid assessment data", body["error"])
			assert.Equal(t, tt.failure.Details, body["details"])
			require.Contains(t, body, "validation_path")
			assert.Equal(t, tt.wantPath, body["validation_path"])
		})
	}
}

// ==========================
// Processing
// ==========================

func TestServeHTTP_Success(t *testing.T) {
	processor := &MockProcessor{}
	processor.On("Process", mock.Anything, mock.MatchedBy(func(p map[string]interface{}) bool {
		return p[models.KeyEmail] == "jane.doe@example.com"
	})).Return(sampleResult(), nil)

	rec := serve(createTestHandler(t, processor), http.MethodPost, string(testutil.SampleSubmissionJSON()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)

	body := decode(t, rec)
	assert.Equal(t, "Assessment processing completed", body["message"])
	assert.Equal(t, "rec-1", body["record_id"])
	assert.Equal(t, models.OverallPartialSuccess, body["overall_status"])
	assert.Equal(t, float64(1), body["successful_steps"])
	assert.Equal(t, float64(2), body["total_steps"])

	results := body["results"].(map[string]interface{})
	steps := results["steps"].(map[string]interface{})
	email := steps[models.StepEmail].(map[string]interface{})
	assert.Equal(t, "skipped", email["status"])
	assert.Equal(t, pipeline.ReasonNoReport, email["reason"])

	processor.AssertExpectations(t)
}

func TestServeHTTP_ProcessorError(t *testing.T) {
	processor := &MockProcessor{}
	processor.On("Process", mock.Anything, mock.Anything).Return(nil, stderrors.New("schema unavailable"))

	rec := serve(createTestHandler(t, processor), http.MethodPost, string(testutil.SampleSubmissionJSON()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "schema unavailable", body["details"])
	assert.Equal(t, "2024-03-01T10:00:00.000000", body["timestamp"])
}

func TestServeHTTP_Panic(t *testing.T) {
	rec := serve(createTestHandler(t, panicProcessor{}), http.MethodPost, string(testutil.SampleSubmissionJSON()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "boom", body["details"])
}

// ==========================
// Methods
// ==========================

func TestServeHTTP_Options(t *testing.T) {
	rec := serve(createTestHandler(t, &MockProcessor{}), http.MethodOptions, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	rec := serve(createTestHandler(t, &MockProcessor{}), http.MethodGet, "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Allow"))
	assertCORS(t, rec)
}

func TestNewHandler_ConfiguredOrigin(t *testing.T) {
	h := NewHandler(&MockProcessor{}, "https://example.com", logger.NewTestLogger(t))
	mux := http.NewServeMux()
	h.Register(mux)

	rec := serve(mux, http.MethodOptions, "")
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
