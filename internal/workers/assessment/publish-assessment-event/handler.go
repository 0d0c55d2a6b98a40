// internal/workers/assessment/publish-assessment-event/handler.go
package publishassessmentevent

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

const TaskType = "publish-assessment-event"

// Publisher sends a JSON event to a topic; *aws.SNSClient satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, topicARN, eventType string, payload interface{}) (string, error)
}

type Handler struct {
	config       *Config
	publisher    Publisher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, publisher Publisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		publisher:    publisher,
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
		h.errorHandler.HandleJobError(context.Background(), client, job, errors.NewMissingAssessmentFieldError("recordId"))
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

	event := NewAssessmentEvent(h.config.EventType, input, models.Timestamp(h.now()))
	messageID, err := h.publisher.PublishJSON(ctx, h.config.TopicARN, h.config.EventType, event)
	if err != nil {
		return nil, errors.NewEventPublishFailedError(err)
	}

	h.logger.Info("assessment event published", map[string]interface{}{
		"recordId":  input.RecordID,
		"eventType": h.config.EventType,
		"messageId": messageID,
	})

	return &Output{Status: StatusPublished, MessageID: messageID}, nil
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
		"messageId": output.MessageID,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
