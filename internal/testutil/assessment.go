// internal/testutil/assessment.go

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/json"

	"assessment-workers/internal/models"
)

// SampleSubmission returns a complete, schema-valid submission for a Retail
// business with every business metric at 4 and every personal metric at 3.
func SampleSubmission() map[string]interface{} {
	business := map[string]interface{}{}
	for _, f := range models.BusinessPerformanceFields {
		business[f] = float64(4)
	}
	personal := map[string]interface{}{}
	for _, f := range models.PersonalReadinessFields {
		personal[f] = float64(3)
	}

	return map[string]interface{}{
		models.KeyMetadata: map[string]interface{}{
			"date_sent": "2024-03-01T10:00:00Z",
			"source":    "web",
			"version":   "1.0",
		},
		models.KeyFirstName:   "Jane",
		models.KeyLastName:    "Doe",
		models.KeyEmail:       "jane.doe@example.com",
		models.KeyPhoneNumber: "+15551234567",
		models.KeyAssessmentData: map[string]interface{}{
			models.SectionBusinessGoals: map[string]interface{}{
				models.FieldCompanyName:                 "Acme Retail",
				models.FieldCompanyIndustry:             "Retail",
				models.FieldNumberOfEmployees:           float64(10),
				models.FieldCurrentBusinessValue:        float64(500000),
				models.FieldTargetSalePrice:             float64(750000),
				models.FieldLastYearRevenue:             float64(200000),
				models.FieldLastYearProfit:              float64(30000),
				models.FieldCurrentYearEstimatedRevenue: float64(220000),
				models.FieldCurrentYearEstimatedProfit:  float64(35000),
				models.FieldPlannedExitTimeline:         "1-2 years",
				models.FieldWouldAcceptOffer:            "yes",
				models.FieldBusinessReadiness:           "business would struggle some but remain functioning",
			},
			models.SectionBusinessPerformance: business,
			models.SectionPersonalReadiness:   personal,
		},
	}
}

// SampleSubmissionJSON is SampleSubmission encoded as JSON.
func SampleSubmissionJSON() []byte {
	data, err := json.Marshal(SampleSubmission())
	if err != nil {
		panic(err)
	}
	return data
}
