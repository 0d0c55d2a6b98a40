// internal/workers/assessment/validate-assessment-data/handler.go
package validateassessmentdata

import (
	"context"
	"encoding/json"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "validate-assessment-data"

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.handle(ctx, job)
	if err != nil {
		metrics.ObserveJob(TaskType, start, string(errors.Normalize(err).Code))
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(context.Background(), client, job, output)
	metrics.ObserveJob(TaskType, start, "")
}

func (h *Handler) handle(ctx context.Context, job entities.Job) (*Output, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewAssessmentValidationFailedError("Invalid JSON in job variables: "+err.Error(), "")
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input.Assessment) == 0 {
		return nil, errors.NewAssessmentValidationFailedError("Request body cannot be empty", "")
	}

	result, err := validation.ValidateAssessment(input.Assessment)
	if err != nil {
		return nil, errors.NewExternalServiceError("schema", err)
	}

	if !result.Valid {
		h.logger.Warn("assessment failed validation", map[string]interface{}{
			"details":        result.Details,
			"validationPath": result.ValidationPath,
			"errorCount":     len(result.Errors),
		})
		if h.config.FailOnInvalid {
			return nil, errors.NewAssessmentValidationFailedError(result.Details, result.ValidationPath)
		}
	}

	return &Output{
		IsValid:          result.Valid,
		Assessment:       result.Data,
		ValidationErrors: result.Errors,
		Details:          result.Details,
		ValidationPath:   result.ValidationPath,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":  job.Key,
		"isValid": output.IsValid,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
