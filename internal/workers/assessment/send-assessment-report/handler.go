// internal/workers/assessment/send-assessment-report/handler.go
package sendassessmentreport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assessment-workers/internal/common/aws"
	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "send-assessment-report"

const (
	ReasonNoRecipient = "No recipient email provided"
	ReasonNoReport    = "No PDF file path provided"

	defaultBody = `Hello,

Your assessment has been generated and is attached to this email.

Best regards,
Data Processing System`
)

// EmailSender delivers a raw MIME message; *aws.SESClient satisfies it.
type EmailSender interface {
	SendRawEmail(ctx context.Context, email aws.RawEmail) (string, error)
}

type Handler struct {
	config       *Config
	sender       EmailSender
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, sender EmailSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sender:       sender,
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
		stdErr := errors.NewEmailSendFailedError(fmt.Errorf("parse input: %w", err))
		stdErr.Retryable = false
		metrics.ObserveJob(TaskType, start, string(stdErr.Code))
		h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
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
	timestamp := models.Timestamp(h.now())

	if strings.TrimSpace(input.Email) == "" {
		return h.skip(ReasonNoRecipient, timestamp), nil
	}
	if input.FilePath == "" {
		return h.skip(ReasonNoReport, timestamp), nil
	}

	attachment, err := os.ReadFile(input.FilePath)
	if err != nil {
		stdErr := errors.NewEmailSendFailedError(fmt.Errorf("PDF file not found: %s", input.FilePath))
		stdErr.Retryable = false
		return nil, stdErr
	}

	subject := h.subject(input)
	body := input.Body
	if body == "" {
		body = defaultBody
	}

	messageID, err := h.sender.SendRawEmail(ctx, aws.RawEmail{
		From:           h.config.FromEmail,
		To:             input.Email,
		Subject:        subject,
		Body:           body,
		AttachmentName: filepath.Base(input.FilePath),
		Attachment:     attachment,
		ContentType:    "application/pdf",
	})
	if err != nil {
		return nil, errors.NewEmailSendFailedError(err)
	}

	h.logger.Info("assessment report emailed", map[string]interface{}{
		"messageId": messageID,
		"toEmail":   input.Email,
		"bytes":     len(attachment),
	})

	return &Output{
		Status:    StatusSent,
		MessageID: messageID,
		ToEmail:   input.Email,
		FromEmail: h.config.FromEmail,
		Subject:   subject,
		Timestamp: timestamp,
	}, nil
}

func (h *Handler) skip(reason, timestamp string) *Output {
	h.logger.Info("email sending skipped", map[string]interface{}{"reason": reason})
	return &Output{Status: StatusSkipped, Reason: reason, Timestamp: timestamp}
}

// subject prefers the job's subject, then one naming the respondent, then
// the configured default.
func (h *Handler) subject(input *Input) string {
	if input.Subject != "" {
		return input.Subject
	}
	name := models.Contact{FirstName: input.FirstName, LastName: input.LastName}.FullName()
	if name != "" {
		return "Assessment Report - " + name
	}
	return h.config.Subject
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
		"status": output.Status,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
