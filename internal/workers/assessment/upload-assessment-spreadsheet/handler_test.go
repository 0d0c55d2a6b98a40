// internal/workers/assessment/upload-assessment-spreadsheet/handler_test.go
package uploadassessmentspreadsheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/spreadsheet"
	"assessment-workers/internal/models"
	"assessment-workers/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

type MockUploader struct {
	UploadFunc func(ctx context.Context, data interface{}) *spreadsheet.UploadResult
}

func (m *MockUploader) Upload(ctx context.Context, data interface{}) *spreadsheet.UploadResult {
	return m.UploadFunc(ctx, data)
}

func newSpreadsheetServer(t *testing.T, status int, body string) (*httptest.Server, *map[string]interface{}) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

// ==========================
// Execute
// ==========================

func TestExecute_Success(t *testing.T) {
	srv, received := newSpreadsheetServer(t, http.StatusOK, `{"row":12}`)
	h := NewHandler(DefaultConfig(), spreadsheet.NewClient(srv.URL, "key", 5*time.Second), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Assessment: testutil.SampleSubmission()})
	require.NoError(t, err)

	assert.Equal(t, spreadsheet.StatusSuccess, output.Status)
	assert.Equal(t, srv.URL, output.APIURL)
	assert.Equal(t, map[string]interface{}{"row": float64(12)}, output.Response)
	assert.NotEmpty(t, output.Timestamp)

	data, ok := (*received)["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "jane.doe@example.com", data[models.KeyEmail])
	assert.Equal(t, spreadsheet.FormatExcel, (*received)["format"])
}

func TestExecute_UpstreamFailure(t *testing.T) {
	srv, _ := newSpreadsheetServer(t, http.StatusBadGateway, "upstream down")
	h := NewHandler(DefaultConfig(), spreadsheet.NewClient(srv.URL, "", 5*time.Second), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Assessment: testutil.SampleSubmission()})
	assert.Nil(t, output)

	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeSpreadsheetUploadFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "upstream down", stdErr.Details)
	assert.Equal(t, http.StatusBadGateway, stdErr.Metadata["statusCode"])
	assert.Equal(t, srv.URL, stdErr.Metadata["apiUrl"])
}

func TestExecute_EmptyAssessment(t *testing.T) {
	called := false
	h := NewHandler(DefaultConfig(), &MockUploader{
		UploadFunc: func(ctx context.Context, data interface{}) *spreadsheet.UploadResult {
			called = true
			return &spreadsheet.UploadResult{Status: spreadsheet.StatusSuccess}
		},
	}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.Equal(t, errors.ErrCodeMissingAssessmentField, errors.Normalize(err).Code)
	assert.False(t, called)
}

// ==========================
// Handle
// ==========================

func TestHandle(t *testing.T) {
	tests := []struct {
		name        string
		result      *spreadsheet.UploadResult
		wantOutcome string
	}{
		{
			name:        "completes on success",
			result:      &spreadsheet.UploadResult{Status: spreadsheet.StatusSuccess, APIURL: "https://sheets.example.com", StatusCode: 200},
			wantOutcome: "completed",
		},
		{
			name:        "fails with retries on upstream error",
			result:      &spreadsheet.UploadResult{Status: spreadsheet.StatusError, APIURL: "https://sheets.example.com", StatusCode: 500, Error: "boom"},
			wantOutcome: "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(DefaultConfig(), &MockUploader{
				UploadFunc: func(ctx context.Context, data interface{}) *spreadsheet.UploadResult { return tt.result },
			}, logger.NewTestLogger(t))

			client := testutil.NewJobClient()
			h.Handle(client, testutil.NewJob(30, TaskType, map[string]interface{}{"assessment": testutil.SampleSubmission()}))

			switch tt.wantOutcome {
			case "completed":
				require.Len(t, client.Completed(), 1)
				assert.Equal(t, "https://sheets.example.com", client.CompletedVariables()["apiUrl"])
			case "failed":
				require.Len(t, client.Failed(), 1)
				assert.Equal(t, int32(2), client.Failed()[0].Retries)
				assert.Contains(t, client.Failed()[0].Variables, "SPREADSHEET_UPLOAD_FAILED")
			}
		})
	}
}
