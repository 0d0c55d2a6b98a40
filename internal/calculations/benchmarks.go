// internal/calculations/benchmarks.go
package calculations

import "assessment-workers/internal/models"

// IndustryBenchmark holds the industry-average EBITDA multiple and margin (percent).
type IndustryBenchmark struct {
	Industry       string  `json:"industry"`
	EBITDAMultiple float64 `json:"ebitda_multiple"`
	EBITDAMargin   float64 `json:"ebitda_margin"`
}

var benchmarks = map[string]IndustryBenchmark{
	"Retail":                   {Industry: "Retail", EBITDAMultiple: 4.1, EBITDAMargin: 15.0},
	"Restaurants":              {Industry: "Restaurants", EBITDAMultiple: 3.6, EBITDAMargin: 12.5},
	"Construction":             {Industry: "Construction", EBITDAMultiple: 4.3, EBITDAMargin: 18.0},
	"Manufacturing":            {Industry: "Manufacturing", EBITDAMultiple: 4.6, EBITDAMargin: 19.2},
	"Professional Services":    {Industry: "Professional Services", EBITDAMultiple: 4.5, EBITDAMargin: 26.7},
	"Healthcare (Non-Medical)": {Industry: "Healthcare (Non-Medical)", EBITDAMultiple: 5.0, EBITDAMargin: 22.2},
	"E-commerce":               {Industry: "E-commerce", EBITDAMultiple: 4.8, EBITDAMargin: 20.3},
	"Wholesale/Distribution":   {Industry: "Wholesale/Distribution", EBITDAMultiple: 4.2, EBITDAMargin: 14.9},
	"Auto Repair":              {Industry: "Auto Repair", EBITDAMultiple: 3.8, EBITDAMargin: 17.7},
	"Beauty/Personal Care":     {Industry: "Beauty/Personal Care", EBITDAMultiple: 3.7, EBITDAMargin: 15.4},
	"IT Services":              {Industry: "IT Services", EBITDAMultiple: 5.3, EBITDAMargin: 25.6},
	models.IndustryOther:       {Industry: models.IndustryOther, EBITDAMultiple: 4.1, EBITDAMargin: 17.5},
}

// LookupBenchmark never fails: unknown or empty industries resolve to the Other row.
func LookupBenchmark(industry string) IndustryBenchmark {
	if b, ok := benchmarks[industry]; ok {
		return b
	}
	return benchmarks[models.IndustryOther]
}

// Benchmarks returns a copy of the table in the order of models.Industries.
func Benchmarks() []IndustryBenchmark {
	out := make([]IndustryBenchmark, 0, len(models.Industries))
	for _, name := range models.Industries {
		out = append(out, benchmarks[name])
	}
	return out
}
