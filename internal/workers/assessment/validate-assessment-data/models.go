// internal/workers/assessment/validate-assessment-data/models.go
package validateassessmentdata

import "assessment-workers/internal/common/validation"

type Input struct {
	Assessment map[string]interface{} `json:"assessment"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	Assessment       map[string]interface{}       `json:"assessment"`
	ValidationErrors []validation.ValidationError `json:"validationErrors,omitempty"`
	Details          string                       `json:"details,omitempty"`
	ValidationPath   string                       `json:"validationPath,omitempty"`
}
