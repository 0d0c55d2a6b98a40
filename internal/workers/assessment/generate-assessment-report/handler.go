// internal/workers/assessment/generate-assessment-report/handler.go
package generateassessmentreport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/report"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-assessment-report"

// ReportGenerator writes the PDF for a record; *report.Generator satisfies it.
type ReportGenerator interface {
	Generate(ctx context.Context, record map[string]interface{}) (*report.Result, error)
}

type Handler struct {
	config       *Config
	generator    ReportGenerator
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, generator ReportGenerator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		generator:    generator,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Assessment) == 0 {
		return nil, errors.NewMissingAssessmentFieldError("assessment")
	}

	result, err := h.generator.Generate(ctx, input.Assessment)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("report", err)
		}
		return nil, errors.NewReportGenerationFailedError(err)
	}

	h.logger.Info("assessment report generated", map[string]interface{}{
		"filename": result.Filename,
		"fileSize": result.FileSize,
	})

	return &Output{
		Status:    result.Status,
		Filename:  result.Filename,
		FilePath:  result.FilePath,
		FileSize:  result.FileSize,
		Timestamp: result.Timestamp,
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
		"jobKey":   job.Key,
		"filePath": output.FilePath,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
