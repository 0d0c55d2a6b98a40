// internal/pipeline/processor.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/observability"
	"assessment-workers/internal/common/validation"
	"assessment-workers/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	ReasonNoReport      = "PDF generation failed or no file path available"
	ReasonNotConfigured = "Step not configured"

	// DetailFilePath is the StepResult detail the email step reads from the
	// report step.
	DetailFilePath = "file_path"

	// DetailRecordID and DetailDuplicate are set by the database step. A
	// duplicate carries the id the submission was first stored under.
	DetailRecordID  = "record_id"
	DetailDuplicate = "duplicate"
)

// ValidationFailure is returned by Process when the payload does not match
// the assessment schema. Nothing else runs in that case.
type ValidationFailure struct {
	Details        string
	ValidationPath string
	Errors         []validation.ValidationError
}

func (v *ValidationFailure) Error() string {
	if v.ValidationPath == "" {
		return "invalid assessment data: " + v.Details
	}
	return fmt.Sprintf("invalid assessment data at %s: %s", v.ValidationPath, v.Details)
}

type Validator interface {
	Validate(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)
}

type Calculator interface {
	Calculate(ctx context.Context, record map[string]interface{}) (map[string]interface{}, error)
}

type SpreadsheetWriter interface {
	Write(ctx context.Context, record map[string]interface{}) (models.StepResult, error)
}

type RecordStore interface {
	Store(ctx context.Context, recordID, createdAt string, record map[string]interface{}) (models.StepResult, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, record map[string]interface{}) (models.StepResult, error)
}

type ReportSender interface {
	Send(ctx context.Context, contact models.Contact, filePath string) (models.StepResult, error)
}

type SearchIndexer interface {
	Index(ctx context.Context, recordID string, record map[string]interface{}) (models.StepResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, recordID, overallStatus string, record map[string]interface{}) (models.StepResult, error)
}

// Steps holds the collaborators of a Processor. Validator and Calculator are
// required. A nil Spreadsheet, Store, Report or Sender is recorded as a
// skipped step; a nil Indexer or Publisher leaves its step out entirely.
type Steps struct {
	Validator   Validator
	Calculator  Calculator
	Spreadsheet SpreadsheetWriter
	Store       RecordStore
	Report      ReportGenerator
	Sender      ReportSender
	Indexer     SearchIndexer
	Publisher   EventPublisher
}

type Processor struct {
	steps  Steps
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewProcessor(steps Steps, log logger.Logger) *Processor {
	return &Processor{
		steps:  steps,
		logger: log.WithFields(map[string]interface{}{"component": "pipeline"}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Process validates payload and runs every processing step against it. Only a
// validation failure or an unusable validator returns an error; step failures
// are recorded in the result.
func (p *Processor) Process(ctx context.Context, payload map[string]interface{}) (*models.ProcessingResult, error) {
	start := time.Now()

	validated, err := p.steps.Validator.Validate(ctx, payload)
	if err != nil {
		return nil, err
	}

	result := &models.ProcessingResult{
		RecordID:  p.newID(),
		Timestamp: models.Timestamp(p.now()),
		Steps:     make(map[string]models.StepResult),
	}

	ctx, span := observability.StartSpan(ctx, "assessment.process",
		attribute.String("assessment.record_id", result.RecordID))
	defer observability.EndSpan(span, nil)

	log := p.logger.WithFields(map[string]interface{}{"recordId": result.RecordID})
	log.Info("processing assessment", nil)

	record := validated
	p.run(ctx, log, result, models.StepCalculations, func(ctx context.Context) (models.StepResult, error) {
		enriched, err := p.steps.Calculator.Calculate(ctx, validated)
		if err != nil {
			return models.StepResult{}, err
		}
		record = enriched
		return models.StepResult{Status: models.StepStatusSuccess}, nil
	})

	if p.steps.Spreadsheet == nil {
		p.skip(log, result, models.StepSpreadsheet, ReasonNotConfigured)
	} else {
		p.run(ctx, log, result, models.StepSpreadsheet, func(ctx context.Context) (models.StepResult, error) {
			return p.steps.Spreadsheet.Write(ctx, record)
		})
	}

	if p.steps.Store == nil {
		p.skip(log, result, models.StepDatabase, ReasonNotConfigured)
	} else {
		p.run(ctx, log, result, models.StepDatabase, func(ctx context.Context) (models.StepResult, error) {
			return p.steps.Store.Store(ctx, result.RecordID, result.Timestamp, record)
		})

		// later steps and the caller must see the id that has a stored row
		if stored := storedRecordID(result.Steps[models.StepDatabase]); stored != "" && stored != result.RecordID {
			log.Info("duplicate submission, using stored record id", map[string]interface{}{"storedRecordId": stored})
			result.RecordID = stored
			log = p.logger.WithFields(map[string]interface{}{"recordId": stored})
			span.SetAttributes(attribute.String("assessment.record_id", stored))
		}
	}

	if p.steps.Report == nil {
		p.skip(log, result, models.StepPDFGeneration, ReasonNotConfigured)
	} else {
		p.run(ctx, log, result, models.StepPDFGeneration, func(ctx context.Context) (models.StepResult, error) {
			return p.steps.Report.Generate(ctx, record)
		})
	}

	filePath := reportPath(result.Steps[models.StepPDFGeneration])
	switch {
	case filePath == "":
		p.skip(log, result, models.StepEmail, ReasonNoReport)
	case p.steps.Sender == nil:
		p.skip(log, result, models.StepEmail, ReasonNotConfigured)
	default:
		p.run(ctx, log, result, models.StepEmail, func(ctx context.Context) (models.StepResult, error) {
			return p.steps.Sender.Send(ctx, models.ContactFromRecord(validated), filePath)
		})
	}

	if p.steps.Indexer != nil {
		p.run(ctx, log, result, models.StepSearchIndex, func(ctx context.Context) (models.StepResult, error) {
			return p.steps.Indexer.Index(ctx, result.RecordID, record)
		})
	}

	if p.steps.Publisher != nil {
		p.run(ctx, log, result, models.StepEvent, func(ctx context.Context) (models.StepResult, error) {
			// the event reports the status of the steps before it
			return p.steps.Publisher.Publish(ctx, result.RecordID, overallStatus(result), record)
		})
	}

	result.TotalSteps = len(result.Steps)
	result.SuccessfulSteps = countSuccessful(result)
	result.OverallStatus = overallStatus(result)

	span.SetAttributes(attribute.String("assessment.overall_status", result.OverallStatus))
	metrics.PipelineDuration.WithLabelValues(result.OverallStatus).Observe(time.Since(start).Seconds())

	log.Info("assessment processing completed", map[string]interface{}{
		"overallStatus":   result.OverallStatus,
		"successfulSteps": result.SuccessfulSteps,
		"totalSteps":      result.TotalSteps,
		"duration_ms":     time.Since(start).Milliseconds(),
	})

	return result, nil
}

// run executes one step in its own span. Errors and panics become an error
// result and never stop the run.
func (p *Processor) run(ctx context.Context, log logger.Logger, result *models.ProcessingResult, name string, fn func(context.Context) (models.StepResult, error)) {
	stepCtx, span := observability.StartSpan(ctx, "assessment.step."+name,
		attribute.String("assessment.step", name))

	res, err := p.safely(stepCtx, fn)
	if err != nil {
		res = models.StepResult{Status: models.StepStatusError, Error: err.Error()}
	}
	if res.Status == "" {
		res.Status = models.StepStatusSuccess
	}

	span.SetAttributes(attribute.String("assessment.step_status", res.Status))
	observability.EndSpan(span, err)

	p.record(log, result, name, res)
}

func (p *Processor) skip(log logger.Logger, result *models.ProcessingResult, name, reason string) {
	p.record(log, result, name, models.StepResult{Status: models.StepStatusSkipped, Reason: reason})
}

func (p *Processor) safely(ctx context.Context, fn func(context.Context) (models.StepResult, error)) (res models.StepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (p *Processor) record(log logger.Logger, result *models.ProcessingResult, name string, res models.StepResult) {
	result.Steps[name] = res
	result.StepOrder = append(result.StepOrder, name)
	metrics.PipelineSteps.WithLabelValues(name, res.Status).Inc()

	fields := map[string]interface{}{"step": name, "status": res.Status}
	switch res.Status {
	case models.StepStatusError:
		fields["error"] = res.Error
		log.Warn("step failed", fields)
	case models.StepStatusSkipped:
		fields["reason"] = res.Reason
		log.Info("step skipped", fields)
	default:
		log.Info("step completed", fields)
	}
}

// storedRecordID returns the earlier record id of a duplicate submission.
func storedRecordID(res models.StepResult) string {
	if !res.Succeeded() {
		return ""
	}
	if duplicate, _ := res.Details[DetailDuplicate].(bool); !duplicate {
		return ""
	}
	id, _ := res.Details[DetailRecordID].(string)
	return id
}

func reportPath(res models.StepResult) string {
	if !res.Succeeded() {
		return ""
	}
	path, _ := res.Details[DetailFilePath].(string)
	return path
}

func countSuccessful(result *models.ProcessingResult) int {
	n := 0
	for _, s := range result.Steps {
		if s.Succeeded() {
			n++
		}
	}
	return n
}

func overallStatus(result *models.ProcessingResult) string {
	if countSuccessful(result) == len(result.Steps) {
		return models.OverallSuccess
	}
	return models.OverallPartialSuccess
}

// Response wraps a result in the body returned to API callers.
func Response(result *models.ProcessingResult) *models.ProcessingResponse {
	return &models.ProcessingResponse{
		Message:         "Assessment processing completed",
		RecordID:        result.RecordID,
		OverallStatus:   result.OverallStatus,
		SuccessfulSteps: result.SuccessfulSteps,
		TotalSteps:      result.TotalSteps,
		Results:         result,
	}
}
