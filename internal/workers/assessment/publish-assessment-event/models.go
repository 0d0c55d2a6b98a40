// internal/workers/assessment/publish-assessment-event/models.go
package publishassessmentevent

import "assessment-workers/internal/models"

const StatusPublished = "success"

type Input struct {
	RecordID      string                 `json:"recordId"`
	OverallStatus string                 `json:"overallStatus"`
	Assessment    map[string]interface{} `json:"assessment"`
}

type Output struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
}

// AssessmentEvent is the message body published for downstream consumers.
type AssessmentEvent struct {
	EventType     string                         `json:"event_type"`
	RecordID      string                         `json:"record_id"`
	OverallStatus string                         `json:"overall_status,omitempty"`
	Contact       models.Contact                 `json:"contact"`
	Calculations  *models.AssessmentCalculations `json:"assessment_calculations,omitempty"`
	OccurredAt    string                         `json:"occurred_at"`
}

func NewAssessmentEvent(eventType string, input *Input, occurredAt string) AssessmentEvent {
	event := AssessmentEvent{
		EventType:     eventType,
		RecordID:      input.RecordID,
		OverallStatus: input.OverallStatus,
		Contact:       models.ContactFromRecord(input.Assessment),
		OccurredAt:    occurredAt,
	}
	if calc, ok := models.CalculationsFromRecord(input.Assessment); ok {
		event.Calculations = &calc
	}
	return event
}
