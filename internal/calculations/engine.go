// internal/calculations/engine.go

// Package calculations derives the financial ratios, valuation range and
// readiness scores attached to every assessment as assessment_calculations.
//
// The engine is a pure function of its input: no I/O, no clock, no shared
// state. It is safe to call concurrently.
package calculations

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"assessment-workers/internal/models"
)

const (
	// floorMultiple is the fixed multiple applied to average profit for the low end of the range.
	floorMultiple = 3.0
	// optimismFactor scales the industry multiple for the high end of the range.
	optimismFactor = 1.4
)

var (
	ErrMissingField = errors.New("MISSING_FIELD")
	ErrInvalidField = errors.New("INVALID_FIELD")
)

// FieldError reports a record that violates the validated-input precondition.
type FieldError struct {
	Section string
	Field   string
	Err     error
}

func (e *FieldError) Error() string {
	path := e.Field
	if e.Section != "" {
		path = e.Section + "." + e.Field
	}
	if errors.Is(e.Err, ErrInvalidField) {
		return fmt.Sprintf("invalid numeric field: %s", path)
	}
	return fmt.Sprintf("missing required field: %s", path)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FinancialInputs are the business_goals_and_financials values the formulas read.
type FinancialInputs struct {
	Industry                    string
	NumberOfEmployees           float64
	LastYearRevenue             float64
	LastYearProfit              float64
	CurrentYearEstimatedRevenue float64
	CurrentYearEstimatedProfit  float64
}

// Compute returns a shallow copy of record with assessment_calculations attached.
// The input map is not modified.
func Compute(record map[string]interface{}) (map[string]interface{}, error) {
	if record == nil {
		return nil, &FieldError{Field: models.KeyAssessmentData, Err: ErrMissingField}
	}

	goals, err := requireSection(record, models.SectionBusinessGoals)
	if err != nil {
		return nil, err
	}
	business, err := requireSection(record, models.SectionBusinessPerformance)
	if err != nil {
		return nil, err
	}
	personal, err := requireSection(record, models.SectionPersonalReadiness)
	if err != nil {
		return nil, err
	}

	inputs, err := ParseFinancialInputs(goals)
	if err != nil {
		return nil, err
	}

	enriched := make(map[string]interface{}, len(record)+1)
	for k, v := range record {
		enriched[k] = v
	}
	enriched[models.KeyCalculations] = Calculate(inputs, business, personal)

	return enriched, nil
}

// Calculate applies the formulas to already extracted inputs.
func Calculate(in FinancialInputs, business, personal map[string]interface{}) models.AssessmentCalculations {
	bench := LookupBenchmark(in.Industry)

	var c models.AssessmentCalculations
	c.EBITDAMultiple = bench.EBITDAMultiple
	c.EBITDAMargin = bench.EBITDAMargin

	c.RevenuePerEmployee = safeDiv(in.LastYearRevenue, in.NumberOfEmployees)
	c.LastYearProfitPercentage = safeDiv(in.LastYearProfit, in.LastYearRevenue)
	c.CurrentYearProfitPercentage = safeDiv(in.CurrentYearEstimatedProfit, in.CurrentYearEstimatedRevenue)

	c.TwoYearAverageRevenue = (in.CurrentYearEstimatedRevenue + in.LastYearRevenue) / 2
	c.TwoYearAverageProfit = (in.CurrentYearEstimatedProfit + in.LastYearProfit) / 2
	c.TwoYearAverageSelfReportedMultiple = safeDiv(c.TwoYearAverageRevenue, c.TwoYearAverageProfit)

	// explicit float64 conversions keep products rounded before the subtraction (no FMA)
	c.RangeOfValueLow = c.TwoYearAverageProfit * floorMultiple
	c.CurrentValueInformationProvided = float64(c.TwoYearAverageProfit*c.EBITDAMargin) / 100
	c.RangeOfValueHigh = float64(float64(c.TwoYearAverageProfit*c.EBITDAMultiple) * optimismFactor)
	c.ProfitGapSurplus = float64(in.CurrentYearEstimatedRevenue*c.LastYearProfitPercentage) -
		float64(in.CurrentYearEstimatedRevenue*c.EBITDAMargin)/100
	c.ExitPlanningValueOpportunity = c.RangeOfValueHigh - c.CurrentValueInformationProvided

	c.CompanyTransferabilityScore = ScorePercentage(business)
	c.PersonalReadinessScore = ScorePercentage(personal)

	return c
}

// ScorePercentage normalizes the Likert answers of a section to 0-100, rounded
// to one decimal. Only integral answers within [1,6] count towards both the sum
// and the maximum; a section without any yields 0.
func ScorePercentage(section map[string]interface{}) float64 {
	total, count := 0.0, 0
	for _, raw := range section {
		v, ok := models.Number(raw)
		if !ok || v != math.Trunc(v) || v < models.MinScore || v > models.MaxScore {
			continue
		}
		total += v
		count++
	}

	maxPossible := float64(count * models.MaxScore)
	if maxPossible <= 0 {
		return 0
	}
	return round1(total / maxPossible * 100)
}

// ParseFinancialInputs extracts the numeric fields the formulas need. A missing
// industry is allowed and resolves to Other.
func ParseFinancialInputs(goals map[string]interface{}) (FinancialInputs, error) {
	in := FinancialInputs{}
	in.Industry, _ = goals[models.FieldCompanyIndustry].(string)

	fields := []struct {
		name string
		dst  *float64
	}{
		{models.FieldNumberOfEmployees, &in.NumberOfEmployees},
		{models.FieldLastYearRevenue, &in.LastYearRevenue},
		{models.FieldLastYearProfit, &in.LastYearProfit},
		{models.FieldCurrentYearEstimatedRevenue, &in.CurrentYearEstimatedRevenue},
		{models.FieldCurrentYearEstimatedProfit, &in.CurrentYearEstimatedProfit},
	}
	for _, f := range fields {
		raw, ok := goals[f.name]
		if !ok || raw == nil {
			return in, &FieldError{Section: models.SectionBusinessGoals, Field: f.name, Err: ErrMissingField}
		}
		v, ok := models.Number(raw)
		if !ok {
			return in, &FieldError{Section: models.SectionBusinessGoals, Field: f.name, Err: ErrInvalidField}
		}
		*f.dst = v
	}

	return in, nil
}

func requireSection(record map[string]interface{}, name string) (map[string]interface{}, error) {
	raw, ok := models.Sections(record)[name]
	if !ok || raw == nil {
		return nil, &FieldError{Section: models.KeyAssessmentData, Field: name, Err: ErrMissingField}
	}
	section, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &FieldError{Section: models.KeyAssessmentData, Field: name, Err: ErrInvalidField}
	}
	return section, nil
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator > 0 {
		return numerator / denominator
	}
	return 0
}

// round1 rounds half-to-even on the exact binary value.
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
