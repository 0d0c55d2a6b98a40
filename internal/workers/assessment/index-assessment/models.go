// internal/workers/assessment/index-assessment/models.go
package indexassessment

import "assessment-workers/internal/models"

const StatusIndexed = "success"

type Input struct {
	RecordID   string                 `json:"recordId"`
	Assessment map[string]interface{} `json:"assessment"`
}

type Output struct {
	Status     string `json:"status"`
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
	Result     string `json:"result"`
}

// SearchDocument is the flattened view of a record kept in the search index.
type SearchDocument struct {
	RecordID                    string  `json:"record_id"`
	Email                       string  `json:"email"`
	FirstName                   string  `json:"first_name"`
	LastName                    string  `json:"last_name"`
	CompanyName                 string  `json:"company_name"`
	CompanyIndustry             string  `json:"company_industry"`
	PlannedExitTimeline         string  `json:"planned_exit_timeline,omitempty"`
	Source                      string  `json:"source,omitempty"`
	DateSent                    string  `json:"date_sent,omitempty"`
	CompanyTransferabilityScore float64 `json:"company_transferability_score"`
	PersonalReadinessScore      float64 `json:"personal_readiness_score"`
	EBITDAMultiple              float64 `json:"ebitda_multiple"`
	RangeOfValueLow             float64 `json:"range_of_value_low"`
	RangeOfValueHigh            float64 `json:"range_of_value_high"`
	ValueOpportunity            float64 `json:"exit_planning_value_opportunity"`
	HasCalculations             bool    `json:"has_calculations"`
	IndexedAt                   string  `json:"indexed_at"`
}

// NewSearchDocument flattens record; calculated fields stay zero when the
// record carries no calculations.
func NewSearchDocument(recordID string, record map[string]interface{}, indexedAt string) SearchDocument {
	contact := models.ContactFromRecord(record)
	calc, ok := models.CalculationsFromRecord(record)
	goals := models.Section(record, models.SectionBusinessGoals)
	metadata, _ := record[models.KeyMetadata].(map[string]interface{})

	doc := SearchDocument{
		RecordID:                    recordID,
		Email:                       contact.Email,
		FirstName:                   contact.FirstName,
		LastName:                    contact.LastName,
		CompanyName:                 contact.CompanyName,
		CompanyIndustry:             contact.Industry,
		HasCalculations:             ok,
		CompanyTransferabilityScore: calc.CompanyTransferabilityScore,
		PersonalReadinessScore:      calc.PersonalReadinessScore,
		EBITDAMultiple:              calc.EBITDAMultiple,
		RangeOfValueLow:             calc.RangeOfValueLow,
		RangeOfValueHigh:            calc.RangeOfValueHigh,
		ValueOpportunity:            calc.ExitPlanningValueOpportunity,
		IndexedAt:                   indexedAt,
	}
	doc.PlannedExitTimeline, _ = goals[models.FieldPlannedExitTimeline].(string)
	doc.Source, _ = metadata["source"].(string)
	doc.DateSent, _ = metadata["date_sent"].(string)
	return doc
}
