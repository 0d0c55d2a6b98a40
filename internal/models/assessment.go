// internal/models/assessment.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record keys
const (
	KeyMetadata       = "metadata"
	KeyFirstName      = "first_name"
	KeyLastName       = "last_name"
	KeyEmail          = "email"
	KeyPhoneNumber    = "phone_number"
	KeyAssessmentData = "assessment_data"
	KeyCalculations   = "assessment_calculations"

	SectionBusinessGoals       = "business_goals_and_financials"
	SectionBusinessPerformance = "business_performance_and_transferability"
	SectionPersonalReadiness   = "personal_readiness_for_business_owners"
)

// Business goals fields
const (
	FieldCompanyName                 = "company_name"
	FieldCompanyIndustry             = "company_industry"
	FieldNumberOfEmployees           = "number_of_employees"
	FieldCurrentBusinessValue        = "current_business_value"
	FieldTargetSalePrice             = "target_sale_price"
	FieldLastYearRevenue             = "last_year_revenue"
	FieldLastYearProfit              = "last_year_profit"
	FieldCurrentYearEstimatedRevenue = "current_year_estimated_revenue"
	FieldCurrentYearEstimatedProfit  = "current_year_estimated_profit"
	FieldPlannedExitTimeline         = "planned_exit_timeline"
	FieldWouldAcceptOffer            = "would_accept_offer"
	FieldBusinessReadiness           = "business_readiness"
)

// MinScore and MaxScore bound every Likert answer.
const (
	MinScore = 1
	MaxScore = 6
)

var Industries = []string{
	"Retail",
	"Restaurants",
	"Construction",
	"Manufacturing",
	"Professional Services",
	"Healthcare (Non-Medical)",
	"E-commerce",
	"Wholesale/Distribution",
	"Auto Repair",
	"Beauty/Personal Care",
	"IT Services",
	"Other",
}

const IndustryOther = "Other"

var ExitTimelines = []string{"0-1 year", "1-2 years", "3-5 years", "5+ years"}

var AcceptOfferValues = []string{"yes", "no"}

var BusinessReadinessValues = []string{
	"business would fall apart without me",
	"business would struggle some but remain functioning",
	"business would run well/independently with strong management",
}

var BusinessPerformanceFields = []string{
	"financial_statements",
	"profitability",
	"customer_base",
	"sales_growth",
	"brand_value",
	"marketing",
	"market_position",
	"customer_relationships",
	"growth_strategy",
	"revenue_streams",
	"management_capability",
	"leadership_roles",
	"succession_planning",
	"employee_turnover",
	"business_processes",
	"it_systems",
	"operations_continuity",
	"technology_systems",
	"proprietary_tech",
	"operational_processes",
	"scalability",
	"supplier_contracts",
	"operating_expenses",
	"risk_management",
	"business_resilience",
	"legal_contracts",
}

var PersonalReadinessFields = []string{
	"personal_identity",
	"financial_plan",
	"physical_health",
	"energy_level",
	"estate_plan",
	"legal_protections",
	"future_vision",
	"family_communication",
	"professional_advisors",
	"process_confidence",
}

// AssessmentCalculations is the derived section attached to every processed record.
type AssessmentCalculations struct {
	EBITDAMultiple                     float64 `json:"ebitda_multiple"`
	EBITDAMargin                       float64 `json:"ebitda_margin"`
	RevenuePerEmployee                 float64 `json:"revenue_per_employee"`
	LastYearProfitPercentage           float64 `json:"last_year_profit_percentage"`
	CurrentYearProfitPercentage        float64 `json:"current_year_profit_percentage"`
	TwoYearAverageRevenue              float64 `json:"two_year_average_revenue"`
	TwoYearAverageProfit               float64 `json:"two_year_average_profit"`
	TwoYearAverageSelfReportedMultiple float64 `json:"two_year_average_self_reported_multiple"`
	RangeOfValueLow                    float64 `json:"range_of_value_low"`
	CurrentValueInformationProvided    float64 `json:"current_value_information_provided"`
	RangeOfValueHigh                   float64 `json:"range_of_value_high"`
	ProfitGapSurplus                   float64 `json:"profit_gap_surplus"`
	ExitPlanningValueOpportunity       float64 `json:"exit_planning_value_opportunity"`
	CompanyTransferabilityScore        float64 `json:"company_transferability_score"`
	PersonalReadinessScore             float64 `json:"personal_readiness_score"`
}

// CalculationsFromRecord reads the calculations section whether it was attached
// in-process as a struct or arrived as decoded JSON.
func CalculationsFromRecord(record map[string]interface{}) (AssessmentCalculations, bool) {
	raw, ok := record[KeyCalculations]
	if !ok || raw == nil {
		return AssessmentCalculations{}, false
	}

	switch v := raw.(type) {
	case AssessmentCalculations:
		return v, true
	case *AssessmentCalculations:
		if v == nil {
			return AssessmentCalculations{}, false
		}
		return *v, true
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return AssessmentCalculations{}, false
	}
	var calc AssessmentCalculations
	if err := json.Unmarshal(data, &calc); err != nil {
		return AssessmentCalculations{}, false
	}
	return calc, true
}

// Sections returns the mapping that holds the three questionnaire sections.
func Sections(record map[string]interface{}) map[string]interface{} {
	if nested, ok := record[KeyAssessmentData].(map[string]interface{}); ok {
		return nested
	}
	return record
}

// Section returns a named questionnaire section, or nil if it is absent.
func Section(record map[string]interface{}, name string) map[string]interface{} {
	section, _ := Sections(record)[name].(map[string]interface{})
	return section
}

// Contact identifies the respondent of an assessment.
type Contact struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

func (c Contact) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", c.FirstName, c.LastName))
}

func ContactFromRecord(record map[string]interface{}) Contact {
	goals := Section(record, SectionBusinessGoals)
	return Contact{
		FirstName:   stringValue(record[KeyFirstName]),
		LastName:    stringValue(record[KeyLastName]),
		Email:       stringValue(record[KeyEmail]),
		PhoneNumber: stringValue(record[KeyPhoneNumber]),
		CompanyName: stringValue(goals[FieldCompanyName]),
		Industry:    stringValue(goals[FieldCompanyIndustry]),
	}
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Number reads a decoded numeric value of any Go numeric type or json.Number.
func Number(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
