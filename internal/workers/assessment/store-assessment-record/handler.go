// internal/workers/assessment/store-assessment-record/handler.go
package storeassessmentrecord

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "store-assessment-record"

	dedupeKeyPrefix = "assessment:submission:"
)

const insertAssessmentSQL = `
	INSERT INTO assessments (
		id, email, first_name, last_name, company_name, company_industry, data, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// RecordStore executes the insert; *database.PostgresClient satisfies it.
type RecordStore interface {
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DedupeCache remembers submission fingerprints; *database.RedisClient satisfies it.
type DedupeCache interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type Handler struct {
	config       *Config
	store        RecordStore
	cache        DedupeCache
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

// NewHandler wires the store worker. cache may be nil, which disables
// duplicate detection regardless of config.
func NewHandler(config *Config, store RecordStore, cache DedupeCache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		cache:        cache,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.ObserveJob(TaskType, start, string(errors.ErrCodeMissingAssessmentField))
		h.errorHandler.HandleJobError(context.Background(), client, job, errors.NewMissingAssessmentFieldError("assessment"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.ObserveJob(TaskType, start, string(errors.Normalize(err).Code))
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, start, "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Assessment) == 0 {
		return nil, errors.NewMissingAssessmentFieldError("assessment")
	}

	recordID := input.RecordID
	if recordID == "" {
		recordID = uuid.New().String()
	}
	createdAt := input.CreatedAt
	if createdAt == "" {
		createdAt = models.Timestamp(h.now())
	}

	dedupeKey := ""
	if h.config.DedupeEnabled && h.cache != nil {
		key, err := Fingerprint(input.Assessment)
		if err != nil {
			return nil, errors.NewDatabaseInsertFailedError(err)
		}
		existing, duplicate := h.claim(ctx, dedupeKeyPrefix+key, recordID)
		if duplicate {
			h.logger.Warn("duplicate submission", map[string]interface{}{
				"recordId":   existing,
				"dedupeKey":  key,
				"rejectedId": recordID,
			})
			if h.config.FailOnDuplicate {
				return nil, errors.NewDuplicateSubmissionError(existing)
			}
			return &Output{
				RecordID:  existing,
				Status:    StatusDuplicate,
				CreatedAt: createdAt,
				Duplicate: true,
			}, nil
		}
		if existing == recordID {
			dedupeKey = dedupeKeyPrefix + key
		}
	}

	item := make(map[string]interface{}, len(input.Assessment)+2)
	for k, v := range input.Assessment {
		item[k] = v
	}
	item["id"] = recordID
	item["created_at"] = createdAt

	data, err := json.Marshal(item)
	if err != nil {
		h.release(dedupeKey)
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("failed to marshal record: %w", err))
	}

	contact := models.ContactFromRecord(input.Assessment)
	_, err = h.store.Exec(ctx, insertAssessmentSQL,
		recordID,
		contact.Email,
		contact.FirstName,
		contact.LastName,
		contact.CompanyName,
		contact.Industry,
		string(data),
		createdAt,
	)
	if err != nil {
		h.release(dedupeKey)
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("assessment record stored", map[string]interface{}{
		"recordId": recordID,
		"email":    contact.Email,
		"itemSize": len(data),
	})

	return &Output{
		RecordID:  recordID,
		Status:    StatusStored,
		CreatedAt: createdAt,
		ItemSize:  len(data),
	}, nil
}

// claim reserves key for recordID. It reports the owning record id and
// whether that owner is a different, earlier submission. Cache failures are
// logged and treated as "not a duplicate".
func (h *Handler) claim(ctx context.Context, key, recordID string) (string, bool) {
	ok, err := h.cache.SetNX(ctx, key, recordID, h.config.DedupeTTL)
	if err != nil {
		h.logger.Warn("dedupe check failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}
	if ok {
		return recordID, false
	}

	existing, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("dedupe lookup failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}
	if existing == recordID {
		return recordID, false
	}
	return existing, true
}

// release drops a fingerprint claimed by a submission that failed to store,
// so that a retry is not reported as a duplicate.
func (h *Handler) release(key string) {
	if key == "" {
		return
	}
	if err := h.cache.Del(context.Background(), key); err != nil {
		h.logger.Warn("failed to release dedupe key", map[string]interface{}{"error": err.Error()})
	}
}

// Fingerprint hashes the respondent's answers. Metadata and derived fields
// are excluded so resubmitting the same answers yields the same key.
func Fingerprint(assessment map[string]interface{}) (string, error) {
	answers := make(map[string]interface{}, len(assessment))
	for k, v := range assessment {
		switch k {
		case models.KeyMetadata, models.KeyCalculations, "id", "created_at":
			continue
		}
		answers[k] = v
	}

	data, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint assessment: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":    job.Key,
		"recordId":  output.RecordID,
		"duplicate": output.Duplicate,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
