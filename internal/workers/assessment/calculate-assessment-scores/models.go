// internal/workers/assessment/calculate-assessment-scores/models.go
package calculateassessmentscores

import "assessment-workers/internal/models"

type Input struct {
	Assessment map[string]interface{} `json:"assessment"`
}

type Output struct {
	Assessment             map[string]interface{}        `json:"assessment"`
	AssessmentCalculations models.AssessmentCalculations `json:"assessmentCalculations"`
}
