// internal/workers/assessment/index-assessment/handler.go
package indexassessment

import (
	"context"
	"encoding/json"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "index-assessment"

// Indexer stores a document by id; *database.ElasticsearchClient satisfies it.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) (string, error)
}

type Handler struct {
	config       *Config
	indexer      Indexer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		indexer:      indexer,
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
	if input.RecordID == "" {
		return nil, errors.NewMissingAssessmentFieldError("recordId")
	}
	if len(input.Assessment) == 0 {
		return nil, errors.NewMissingAssessmentFieldError("assessment")
	}

	doc := NewSearchDocument(input.RecordID, input.Assessment, models.Timestamp(h.now()))
	result, err := h.indexer.IndexDocument(ctx, h.config.Index, input.RecordID, doc)
	if err != nil {
		return nil, errors.NewIndexingFailedError(err)
	}

	h.logger.Info("assessment indexed", map[string]interface{}{
		"index":    h.config.Index,
		"recordId": input.RecordID,
		"result":   result,
	})

	return &Output{
		Status:     StatusIndexed,
		Index:      h.config.Index,
		DocumentID: input.RecordID,
		Result:     result,
	}, nil
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
		"jobKey":     job.Key,
		"documentId": output.DocumentID,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
