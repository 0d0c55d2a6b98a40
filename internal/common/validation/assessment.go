// internal/common/validation/assessment.go
package validation

import (
	"time"

	"assessment-workers/internal/models"
)

// Metadata defaults applied before validation.
const (
	DefaultSource  = "web"
	DefaultVersion = "1.0"
)

// AssessmentValidation is the outcome of ValidateAssessment. Data holds the
// submission with metadata defaults filled in, valid or not.
type AssessmentValidation struct {
	Valid          bool                   `json:"valid"`
	Data           map[string]interface{} `json:"data"`
	Errors         []ValidationError      `json:"errors,omitempty"`
	Details        string                 `json:"details,omitempty"`
	ValidationPath string                 `json:"validationPath,omitempty"`
}

// ValidateAssessment fills metadata defaults into a copy of payload and checks
// it against the submission schema.
func ValidateAssessment(payload map[string]interface{}) (*AssessmentValidation, error) {
	data := WithMetadataDefaults(payload, time.Now().UTC())

	result, err := Validate(AssessmentSchema(), data)
	if err != nil {
		return nil, err
	}

	out := &AssessmentValidation{
		Valid:  result.Valid,
		Data:   data,
		Errors: result.Errors,
	}
	if len(result.Errors) > 0 {
		out.Details = result.Errors[0].Message
		out.ValidationPath = Path(result.Errors[0].Field)
	}

	return out, nil
}

// WithMetadataDefaults returns a copy of payload whose metadata carries
// date_sent, source and version. The input is left untouched.
func WithMetadataDefaults(payload map[string]interface{}, now time.Time) map[string]interface{} {
	data := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}

	metadata := map[string]interface{}{}
	if existing, ok := payload[models.KeyMetadata].(map[string]interface{}); ok {
		for k, v := range existing {
			metadata[k] = v
		}
	} else if _, ok := payload[models.KeyMetadata]; ok {
		// leave a malformed or null metadata value for the schema to reject
		return data
	}

	if _, ok := metadata["date_sent"]; !ok {
		metadata["date_sent"] = now.Format(time.RFC3339)
	}
	if _, ok := metadata["source"]; !ok {
		metadata["source"] = DefaultSource
	}
	if _, ok := metadata["version"]; !ok {
		metadata["version"] = DefaultVersion
	}
	data[models.KeyMetadata] = metadata

	return data
}

// AssessmentSchema builds the draft-07 schema for a submission.
func AssessmentSchema() map[string]interface{} {
	return map[string]interface{}{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]interface{}{
			models.KeyMetadata: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"date_sent": map[string]interface{}{"type": "string", "format": "date-time"},
					"source":    map[string]interface{}{"type": "string"},
					"version":   map[string]interface{}{"type": "string"},
				},
				"required":             []interface{}{"date_sent"},
				"additionalProperties": false,
			},
			models.KeyFirstName: nameSchema(),
			models.KeyLastName:  nameSchema(),
			models.KeyEmail: map[string]interface{}{
				"type":      "string",
				"format":    "email",
				"minLength": 1,
				"maxLength": 100,
			},
			models.KeyPhoneNumber: map[string]interface{}{
				"type":      "string",
				"pattern":   `^\+?[1-9]\d{1,14}$`,
				"minLength": 10,
			},
			models.KeyAssessmentData: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					models.SectionBusinessGoals:       businessGoalsSchema(),
					models.SectionBusinessPerformance: likertSection(models.BusinessPerformanceFields),
					models.SectionPersonalReadiness:   likertSection(models.PersonalReadinessFields),
				},
				"required": []interface{}{
					models.SectionBusinessGoals,
					models.SectionBusinessPerformance,
					models.SectionPersonalReadiness,
				},
				"additionalProperties": false,
			},
		},
		"required": []interface{}{
			models.KeyMetadata,
			models.KeyFirstName,
			models.KeyLastName,
			models.KeyEmail,
			models.KeyPhoneNumber,
			models.KeyAssessmentData,
		},
		"additionalProperties": false,
	}
}

func nameSchema() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 35}
}

func nonNegative() map[string]interface{} {
	return map[string]interface{}{"type": "number", "minimum": 0}
}

func enumOf(values []string) map[string]interface{} {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]interface{}{"type": "string", "enum": enum}
}

func businessGoalsSchema() map[string]interface{} {
	props := map[string]interface{}{
		models.FieldCompanyName:                 map[string]interface{}{"type": "string", "minLength": 1},
		models.FieldCompanyIndustry:             enumOf(models.Industries),
		models.FieldNumberOfEmployees:           nonNegative(),
		models.FieldCurrentBusinessValue:        nonNegative(),
		models.FieldTargetSalePrice:             nonNegative(),
		models.FieldLastYearRevenue:             nonNegative(),
		models.FieldLastYearProfit:              nonNegative(),
		models.FieldCurrentYearEstimatedRevenue: nonNegative(),
		models.FieldCurrentYearEstimatedProfit:  nonNegative(),
		models.FieldPlannedExitTimeline:         enumOf(models.ExitTimelines),
		models.FieldWouldAcceptOffer:            enumOf(models.AcceptOfferValues),
		models.FieldBusinessReadiness:           enumOf(models.BusinessReadinessValues),
	}

	required := make([]interface{}, 0, len(props))
	for _, f := range []string{
		models.FieldCompanyName,
		models.FieldCompanyIndustry,
		models.FieldNumberOfEmployees,
		models.FieldCurrentBusinessValue,
		models.FieldTargetSalePrice,
		models.FieldLastYearRevenue,
		models.FieldLastYearProfit,
		models.FieldCurrentYearEstimatedRevenue,
		models.FieldCurrentYearEstimatedProfit,
		models.FieldPlannedExitTimeline,
		models.FieldWouldAcceptOffer,
		models.FieldBusinessReadiness,
	} {
		required = append(required, f)
	}

	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func likertSection(fields []string) map[string]interface{} {
	props := make(map[string]interface{}, len(fields))
	required := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		props[f] = map[string]interface{}{
			"type":    "integer",
			"minimum": models.MinScore,
			"maximum": models.MaxScore,
		}
		required = append(required, f)
	}

	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}
