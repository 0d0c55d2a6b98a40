// internal/workers/assessment/calculate-assessment-scores/handler.go
package calculateassessmentscores

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"assessment-workers/internal/calculations"
	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-assessment-scores"

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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.ObserveJob(TaskType, start, string(errors.ErrCodeCalculationFailed))
		h.errorHandler.HandleJobError(context.Background(), client, job, errors.NewCalculationFailedError(err))
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input.Assessment) == 0 {
		return nil, errors.NewMissingAssessmentFieldError("assessment")
	}

	enriched, err := calculations.Compute(input.Assessment)
	if err != nil {
		var fieldErr *calculations.FieldError
		if stderrors.As(err, &fieldErr) && stderrors.Is(err, calculations.ErrMissingField) {
			field := fieldErr.Field
			if fieldErr.Section != "" {
				field = fieldErr.Section + "." + field
			}
			return nil, errors.NewMissingAssessmentFieldError(field)
		}
		return nil, errors.NewCalculationFailedError(err)
	}

	calc, _ := models.CalculationsFromRecord(enriched)
	metrics.ObserveScores(calc.CompanyTransferabilityScore, calc.PersonalReadinessScore)

	h.logger.Info("assessment scores calculated", map[string]interface{}{
		"companyTransferabilityScore": calc.CompanyTransferabilityScore,
		"personalReadinessScore":      calc.PersonalReadinessScore,
		"ebitdaMultiple":              calc.EBITDAMultiple,
	})

	return &Output{
		Assessment:             enriched,
		AssessmentCalculations: calc,
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
