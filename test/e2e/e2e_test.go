// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/api"
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/pipeline"
	"assessment-workers/internal/report"
	"assessment-workers/internal/testutil"

	cas "assessment-workers/internal/workers/assessment/calculate-assessment-scores"
	gar "assessment-workers/internal/workers/assessment/generate-assessment-report"
	sto "assessment-workers/internal/workers/assessment/store-assessment-record"
	vad "assessment-workers/internal/workers/assessment/validate-assessment-data"
)

// These tests talk to the Postgres instance from configs/config.yaml.
// Run with E2E_ENABLED=1 once docker compose is up.
func requireE2E(t testing.TB) {
	if os.Getenv("E2E_ENABLED") != "1" {
		t.Skip("set E2E_ENABLED=1 to run end-to-end tests")
	}
}

func setup(t *testing.T) (*database.PostgresClient, http.Handler) {
	cfg, err := config.Load()
	require.NoError(t, err)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, pg.Ping(ctx), "postgres unreachable")
	require.NoError(t, pg.EnsureAssessmentSchema(ctx))

	log := logger.NewTestLogger(t)
	reports := report.NewGenerator(t.TempDir(), cfg.Report.Title, cfg.Report.Benchmark)

	steps := pipeline.Steps{
		Validator:  pipeline.NewValidator(vad.NewHandler(vad.DefaultConfig(), log)),
		Calculator: pipeline.NewCalculator(cas.NewHandler(cas.DefaultConfig(), log)),
		Store:      pipeline.NewRecordStore(sto.NewHandler(sto.DefaultConfig(), pg, nil, log)),
		Report:     pipeline.NewReportGenerator(gar.NewHandler(gar.DefaultConfig(), reports, log)),
	}

	mux := http.NewServeMux()
	api.NewHandler(pipeline.NewProcessor(steps, log), "", log).Register(mux)
	return pg, mux
}

func TestAssessmentSubmission(t *testing.T) {
	requireE2E(t)
	pg, mux := setup(t)

	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Post(server.URL+api.AssessmentsPath, "application/json", bytes.NewReader(testutil.SampleSubmissionJSON()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.ProcessingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.RecordID)

	steps := body.Results.Steps
	assert.True(t, steps[models.StepCalculations].Succeeded())
	assert.True(t, steps[models.StepDatabase].Succeeded(), steps[models.StepDatabase].Error)
	assert.True(t, steps[models.StepPDFGeneration].Succeeded(), steps[models.StepPDFGeneration].Error)
	assert.Equal(t, models.StepStatusSkipped, steps[models.StepSpreadsheet].Status)
	assert.Equal(t, models.StepStatusSkipped, steps[models.StepEmail].Status)
	assert.Equal(t, models.OverallPartialSuccess, body.OverallStatus)

	path, _ := steps[models.StepPDFGeneration].Details[pipeline.DetailFilePath].(string)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	var (
		email string
		data  []byte
	)
	err = pg.QueryRow(context.Background(),
		"SELECT email, data FROM "+database.AssessmentsTable+" WHERE id = $1", body.RecordID,
	).Scan(&email, &data)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", email)

	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Contains(t, stored, models.KeyCalculations)
}

func TestAssessmentSubmission_Invalid(t *testing.T) {
	requireE2E(t)
	_, mux := setup(t)

	payload := testutil.SampleSubmission()
	payload[models.KeyEmail] = "not-an-email"
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, api.AssessmentsPath, bytes.NewReader(raw)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid assessment data")
}

func BenchmarkCalculateAssessmentScores(b *testing.B) {
	h := cas.NewHandler(cas.DefaultConfig(), logger.NewNoOpLogger())
	input := &cas.Input{Assessment: testutil.SampleSubmission()}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Execute(ctx, input); err != nil {
			b.Fatal(err)
		}
	}
}
