// internal/workers/assessment/store-assessment-record/handler_test.go
package storeassessmentrecord

import (
	"context"
	"fmt"
	"testing"
	"time"

	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

const (
	testRecordID  = "6f1c2a4e-8d3b-4c1a-9b7e-2f5d8a9c0e11"
	testCreatedAt = "2024-03-01T10:00:00.000000"
	insertPattern = `INSERT INTO assessments`
)

func createTestConfig() *Config {
	return DefaultConfig()
}

func setupSQLMock(t *testing.T) (*database.PostgresClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewPostgresFromDB(db), mock
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func expectInsert(mock sqlmock.Sqlmock, recordID string) *sqlmock.ExpectedExec {
	return mock.ExpectExec(insertPattern).
		WithArgs(recordID, "jane.doe@example.com", "Jane", "Doe", "Acme Retail", "Retail", sqlmock.AnyArg(), testCreatedAt)
}

func createTestInput(recordID string) *Input {
	return &Input{
		Assessment: testutil.SampleSubmission(),
		RecordID:   recordID,
		CreatedAt:  testCreatedAt,
	}
}

// ==========================
// Execute
// ==========================

func TestExecute_StoresRecord(t *testing.T) {
	store, mock := setupSQLMock(t)
	expectInsert(mock, testRecordID).WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewHandler(createTestConfig(), store, nil, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), createTestInput(testRecordID))
	require.NoError(t, err)

	assert.Equal(t, testRecordID, output.RecordID)
	assert.Equal(t, StatusStored, output.Status)
	assert.Equal(t, testCreatedAt, output.CreatedAt)
	assert.False(t, output.Duplicate)
	assert.Greater(t, output.ItemSize, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_AssignsRecordIDAndTimestamp(t *testing.T) {
	store, mock := setupSQLMock(t)
	mock.ExpectExec(insertPattern).WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewHandler(createTestConfig(), store, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	output, err := h.Execute(context.Background(), &Input{Assessment: testutil.SampleSubmission()})
	require.NoError(t, err)

	assert.Len(t, output.RecordID, 36)
	assert.Equal(t, testCreatedAt, output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InsertFailure(t *testing.T) {
	store, mock := setupSQLMock(t)
	expectInsert(mock, testRecordID).WillReturnError(fmt.Errorf("connection reset"))

	h := NewHandler(createTestConfig(), store, nil, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), createTestInput(testRecordID))

	assert.Nil(t, output)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "connection reset")
}

func TestExecute_EmptyAssessment(t *testing.T) {
	store, _ := setupSQLMock(t)
	h := NewHandler(createTestConfig(), store, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.Equal(t, errors.ErrCodeMissingAssessmentField, errors.Normalize(err).Code)
}

// ==========================
// Deduplication
// ==========================

func TestExecute_DetectsDuplicate(t *testing.T) {
	store, mock := setupSQLMock(t)
	mr, cache := setupMiniRedis(t)
	expectInsert(mock, testRecordID).WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := createTestConfig()
	cfg.DedupeEnabled = true
	h := NewHandler(cfg, store, cache, logger.NewTestLogger(t))

	first, err := h.Execute(context.Background(), createTestInput(testRecordID))
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	key, err := Fingerprint(testutil.SampleSubmission())
	require.NoError(t, err)
	stored, err := mr.Get(dedupeKeyPrefix + key)
	require.NoError(t, err)
	assert.Equal(t, testRecordID, stored)
	assert.Greater(t, mr.TTL(dedupeKeyPrefix+key), time.Duration(0))

	second, err := h.Execute(context.Background(), createTestInput("another-id"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, StatusDuplicate, second.Status)
	assert.Equal(t, testRecordID, second.RecordID)
	assert.Zero(t, second.ItemSize)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_FailOnDuplicate(t *testing.T) {
	store, mock := setupSQLMock(t)
	_, cache := setupMiniRedis(t)
	expectInsert(mock, testRecordID).WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := createTestConfig()
	cfg.DedupeEnabled = true
	cfg.FailOnDuplicate = true
	h := NewHandler(cfg, store, cache, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), createTestInput(testRecordID))
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), createTestInput("another-id"))
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeDuplicateSubmission, stdErr.Code)
	assert.Contains(t, stdErr.Details, testRecordID)
}

func TestExecute_ReleasesKeyOnInsertFailure(t *testing.T) {
	store, mock := setupSQLMock(t)
	mr, cache := setupMiniRedis(t)
	expectInsert(mock, testRecordID).WillReturnError(fmt.Errorf("deadlock detected"))

	cfg := createTestConfig()
	cfg.DedupeEnabled = true
	h := NewHandler(cfg, store, cache, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), createTestInput(testRecordID))
	require.Error(t, err)

	key, err := Fingerprint(testutil.SampleSubmission())
	require.NoError(t, err)
	assert.False(t, mr.Exists(dedupeKeyPrefix+key))
}

func TestExecute_CacheErrorDoesNotBlockStore(t *testing.T) {
	store, mock := setupSQLMock(t)
	redisClient, redisMock := redismock.NewClientMock()
	expectInsert(mock, testRecordID).WillReturnResult(sqlmock.NewResult(1, 1))

	key, err := Fingerprint(testutil.SampleSubmission())
	require.NoError(t, err)
	redisMock.ExpectSetNX(dedupeKeyPrefix+key, testRecordID, 24*time.Hour).SetErr(fmt.Errorf("redis unavailable"))

	cfg := createTestConfig()
	cfg.DedupeEnabled = true
	h := NewHandler(cfg, store, database.NewRedisFromClient(redisClient), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput(testRecordID))
	require.NoError(t, err)
	assert.False(t, output.Duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestFingerprint_IgnoresMetadata(t *testing.T) {
	a := testutil.SampleSubmission()
	b := testutil.SampleSubmission()
	b[models.KeyMetadata] = map[string]interface{}{"date_sent": "2025-01-01T00:00:00Z"}
	b["id"] = "x"

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	b[models.KeyEmail] = "other@example.com"
	fc, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

// ==========================
// Handle
// ==========================

func TestHandle_CompletesJob(t *testing.T) {
	store, mock := setupSQLMock(t)
	expectInsert(mock, testRecordID).WillReturnResult(sqlmock.NewResult(1, 1))

	client := testutil.NewJobClient()
	job := testutil.NewJob(20, TaskType, map[string]interface{}{
		"assessment": testutil.SampleSubmission(),
		"recordId":   testRecordID,
		"createdAt":  testCreatedAt,
	})

	NewHandler(createTestConfig(), store, nil, logger.NewTestLogger(t)).Handle(client, job)

	require.Len(t, client.Completed(), 1)
	vars := client.CompletedVariables()
	assert.Equal(t, testRecordID, vars["recordId"])
	assert.Equal(t, StatusStored, vars["status"])
	assert.Equal(t, false, vars["duplicate"])
}

func TestHandle_RetriesInsertFailure(t *testing.T) {
	store, mock := setupSQLMock(t)
	expectInsert(mock, testRecordID).WillReturnError(fmt.Errorf("connection reset"))

	client := testutil.NewJobClient()
	job := testutil.NewJob(21, TaskType, map[string]interface{}{
		"assessment": testutil.SampleSubmission(),
		"recordId":   testRecordID,
		"createdAt":  testCreatedAt,
	})

	NewHandler(createTestConfig(), store, nil, logger.NewTestLogger(t)).Handle(client, job)

	assert.Empty(t, client.Completed())
	assert.Empty(t, client.Thrown())
	require.Len(t, client.Failed(), 1)
	assert.Equal(t, int32(2), client.Failed()[0].Retries)
	assert.Contains(t, client.Failed()[0].Variables, "DATABASE_INSERT_FAILED")
}
