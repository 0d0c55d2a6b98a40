// internal/pipeline/adapters.go
package pipeline

import (
	"context"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/models"
	calculateassessmentscores "assessment-workers/internal/workers/assessment/calculate-assessment-scores"
	generateassessmentreport "assessment-workers/internal/workers/assessment/generate-assessment-report"
	indexassessment "assessment-workers/internal/workers/assessment/index-assessment"
	publishassessmentevent "assessment-workers/internal/workers/assessment/publish-assessment-event"
	sendassessmentreport "assessment-workers/internal/workers/assessment/send-assessment-report"
	storeassessmentrecord "assessment-workers/internal/workers/assessment/store-assessment-record"
	uploadassessmentspreadsheet "assessment-workers/internal/workers/assessment/upload-assessment-spreadsheet"
	validateassessmentdata "assessment-workers/internal/workers/assessment/validate-assessment-data"
)

// The adapters below let the HTTP path reuse the same Execute logic the
// Zeebe job handlers run.

type validatorAdapter struct {
	h *validateassessmentdata.Handler
}

func NewValidator(h *validateassessmentdata.Handler) Validator {
	return validatorAdapter{h: h}
}

func (a validatorAdapter) Validate(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	out, err := a.h.Execute(ctx, &validateassessmentdata.Input{Assessment: payload})
	if err != nil {
		stdErr := errors.Normalize(err)
		if stdErr.Code != errors.ErrCodeAssessmentValidationFailed {
			return nil, err
		}
		path, _ := stdErr.Metadata["validationPath"].(string)
		return nil, &ValidationFailure{Details: stdErr.Details, ValidationPath: path}
	}
	if !out.IsValid {
		return nil, &ValidationFailure{
			Details:        out.Details,
			ValidationPath: out.ValidationPath,
			Errors:         out.ValidationErrors,
		}
	}
	return out.Assessment, nil
}

type calculatorAdapter struct {
	h *calculateassessmentscores.Handler
}

func NewCalculator(h *calculateassessmentscores.Handler) Calculator {
	return calculatorAdapter{h: h}
}

func (a calculatorAdapter) Calculate(ctx context.Context, record map[string]interface{}) (map[string]interface{}, error) {
	out, err := a.h.Execute(ctx, &calculateassessmentscores.Input{Assessment: record})
	if err != nil {
		return nil, stepError(err)
	}
	return out.Assessment, nil
}

type spreadsheetAdapter struct {
	h *uploadassessmentspreadsheet.Handler
}

func NewSpreadsheetWriter(h *uploadassessmentspreadsheet.Handler) SpreadsheetWriter {
	return spreadsheetAdapter{h: h}
}

func (a spreadsheetAdapter) Write(ctx context.Context, record map[string]interface{}) (models.StepResult, error) {
	out, err := a.h.Execute(ctx, &uploadassessmentspreadsheet.Input{Assessment: record})
	if err != nil {
		return models.StepResult{}, stepError(err)
	}
	details := map[string]interface{}{
		"api_url":   out.APIURL,
		"timestamp": out.Timestamp,
	}
	if out.StatusCode != 0 {
		details["status_code"] = out.StatusCode
	}
	if out.Response != nil {
		details["response"] = out.Response
	}
	return models.StepResult{Status: out.Status, Details: details}, nil
}

type storeAdapter struct {
	h *storeassessmentrecord.Handler
}

func NewRecordStore(h *storeassessmentrecord.Handler) RecordStore {
	return storeAdapter{h: h}
}

func (a storeAdapter) Store(ctx context.Context, recordID, createdAt string, record map[string]interface{}) (models.StepResult, error) {
	out, err := a.h.Execute(ctx, &storeassessmentrecord.Input{
		Assessment: record,
		RecordID:   recordID,
		CreatedAt:  createdAt,
	})
	if err != nil {
		return models.StepResult{}, stepError(err)
	}
	// a duplicate is already stored under its original id
	return models.StepResult{
		Status: models.StepStatusSuccess,
		Details: map[string]interface{}{
			DetailRecordID:  out.RecordID,
			"created_at":    out.CreatedAt,
			DetailDuplicate: out.Duplicate,
			"item_size":     out.ItemSize,
		},
	}, nil
}

type reportAdapter struct {
	h *generateassessmentreport.Handler
}

func NewReportGenerator(h *generateassessmentreport.Handler) ReportGenerator {
	return reportAdapter{h: h}
}

func (a reportAdapter) Generate(ctx context.Context, record map[string]interface{}) (models.StepResult, error) {
	out, err := a.h.Execute(ctx, &generateassessmentreport.Input{Assessment: record})
	if err != nil {
		return models.StepResult{}, stepError(err)
	}
	return models.StepResult{
		Status: out.Status,
		Details: map[string]interface{}{
			"filename":     out.Filename,
			DetailFilePath: out.FilePath,
			"file_size":    out.FileSize,
			"timestamp":    out.Timestamp,
		},
	}, nil
}

type senderAdapter struct {
	h *sendassessmentreport.Handler
}

func NewReportSender(h *sendassessmentreport.Handler) ReportSender {
	return senderAdapter{h: h}
}

func (a senderAdapter) Send(ctx context.Context, contact models.Contact, filePath string) (models.StepResult, error) {
	out, err := a.h.Execute(ctx, &sendassessmentreport.Input{
		Email:     contact.Email,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		FilePath:  filePath,
	})
	if err != nil {
		return models.StepResult{}, stepError(err)
	}
	if out.Status == sendassessmentreport.StatusSkipped {
		return models.StepResult{Status: models.StepStatusSkipped, Reason: out.Reason}, nil
	}
	return models.StepResult{
		Status: out.Status,
		Details: map[string]interface{}{
			"message_id": out.MessageID,
			"to_email":   out.ToEmail,
			"from_email": out.FromEmail,
			"subject":    out.Subject,
			"timestamp":  out.Timestamp,
		},
	}, nil
}

type indexerAdapter struct {
	h *indexassessment.Handler
}

func NewSearchIndexer(h *indexassessment.Handler) SearchIndexer {
	return indexerAdapter{h: h}
}

func (a indexerAdapter) Index(ctx context.Context, recordID string, record map[string]interface{}) (models.StepResult, error) {
	out, err := a.h.Execute(ctx, &indexassessment.Input{RecordID: recordID, Assessment: record})
	if err != nil {
		return models.StepResult{}, stepError(err)
	}
	return models.StepResult{
		Status: out.Status,
		Details: map[string]interface{}{
			"index":       out.Index,
			"document_id": out.DocumentID,
			"result":      out.Result,
		},
	}, nil
}

type publisherAdapter struct {
	h *publishassessmentevent.Handler
}

func NewEventPublisher(h *publishassessmentevent.Handler) EventPublisher {
	return publisherAdapter{h: h}
}

func (a publisherAdapter) Publish(ctx context.Context, recordID, overallStatus string, record map[string]interface{}) (models.StepResult, error) {
	out, err := a.h.Execute(ctx, &publishassessmentevent.Input{
		RecordID:      recordID,
		OverallStatus: overallStatus,
		Assessment:    record,
	})
	if err != nil {
		return models.StepResult{}, stepError(err)
	}
	return models.StepResult{
		Status:  out.Status,
		Details: map[string]interface{}{"message_id": out.MessageID},
	}, nil
}

type stepErr struct {
	std *errors.StandardError
}

func (e stepErr) Error() string {
	if e.std.Details == "" {
		return e.std.Message
	}
	return e.std.Message + ": " + e.std.Details
}

func (e stepErr) Unwrap() error { return e.std }

// stepError flattens a worker error to the message recorded in the step result.
func stepError(err error) error {
	return stepErr{std: errors.Normalize(err)}
}
