// internal/workers/assessment/upload-assessment-spreadsheet/handler.go
package uploadassessmentspreadsheet

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/spreadsheet"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "upload-assessment-spreadsheet"

// Uploader posts a record to the spreadsheet API; *spreadsheet.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, data interface{}) *spreadsheet.UploadResult
}

type Handler struct {
	config       *Config
	uploader     Uploader
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, uploader Uploader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		uploader:     uploader,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
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

// execute uploads the record. A failed upload is returned as a retryable
// SPREADSHEET_UPLOAD_FAILED error whose metadata carries the upstream status.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Assessment) == 0 {
		return nil, errors.NewMissingAssessmentFieldError("assessment")
	}

	result := h.uploader.Upload(ctx, input.Assessment)
	if !result.Succeeded() {
		h.logger.Warn("spreadsheet upload failed", map[string]interface{}{
			"apiUrl":     result.APIURL,
			"statusCode": result.StatusCode,
			"error":      result.Error,
		})
		stdErr := errors.NewSpreadsheetUploadFailedError(stderrors.New(result.Error)).
			WithMetadata("apiUrl", result.APIURL)
		if result.StatusCode != 0 {
			stdErr.WithMetadata("statusCode", result.StatusCode)
		}
		return nil, stdErr
	}

	h.logger.Info("assessment uploaded to spreadsheet", map[string]interface{}{
		"apiUrl":     result.APIURL,
		"statusCode": result.StatusCode,
	})

	return &Output{
		Status:     result.Status,
		APIURL:     result.APIURL,
		StatusCode: result.StatusCode,
		Response:   result.Response,
		Timestamp:  result.Timestamp,
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
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
