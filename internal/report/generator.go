// internal/report/generator.go

// Package report renders the assessment PDF sent to respondents.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"assessment-workers/internal/models"
)

const (
	StatusSuccess = "success"

	DefaultTitle     = "Business Exit Readiness Assessment Report"
	DefaultBenchmark = 75.0

	fileTimeLayout = "20060102_150405"
)

// Result describes a report written to disk.
type Result struct {
	Filename  string `json:"filename"`
	FilePath  string `json:"file_path"`
	FileSize  int64  `json:"file_size"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type Generator struct {
	outputDir string
	title     string
	benchmark float64
	compress  bool
	now       func() time.Time
}

// NewGenerator returns a generator writing into outputDir. Empty values fall
// back to the system temp dir, DefaultTitle and DefaultBenchmark.
func NewGenerator(outputDir, title string, benchmark float64) *Generator {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if title == "" {
		title = DefaultTitle
	}
	if benchmark <= 0 {
		benchmark = DefaultBenchmark
	}
	return &Generator{
		outputDir: outputDir,
		title:     title,
		benchmark: benchmark,
		compress:  true,
		now:       time.Now,
	}
}

func (g *Generator) OutputDir() string {
	return g.outputDir
}

// Generate renders record into a new file named after the company and the
// current UTC time.
func (g *Generator) Generate(ctx context.Context, record map[string]interface{}) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := g.now().UTC()
	company := models.ContactFromRecord(record).CompanyName
	if company == "" {
		company = "Assessment"
	}
	filename := fmt.Sprintf("assessment_report_%s_%s.pdf", SafeFileName(company), now.Format(fileTimeLayout))
	path := filepath.Join(g.outputDir, filename)

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	if err := g.render(f, record, now); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close report file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat report file: %w", err)
	}

	return &Result{
		Filename:  filename,
		FilePath:  path,
		FileSize:  info.Size(),
		Status:    StatusSuccess,
		Timestamp: models.Timestamp(g.now()),
	}, nil
}

// Render writes the PDF for record to w.
func (g *Generator) Render(w io.Writer, record map[string]interface{}) error {
	return g.render(w, record, g.now().UTC())
}

func (g *Generator) render(w io.Writer, record map[string]interface{}, now time.Time) error {
	v := newView(record)

	d := newDocument(g.title, g.compress, now)
	d.titleBlock(g.title, v, now)
	d.executiveSummary(v)
	d.financialPerformance(v)
	d.valuation(v)
	d.metricsSection("Business Performance & Transferability Assessment", v.calc.CompanyTransferabilityScore,
		GroupMetrics(BusinessMetrics, v.business), false)
	if v.hasPersonal {
		d.metricsSection("Personal Readiness Assessment", v.calc.PersonalReadinessScore,
			GroupMetrics(PersonalMetrics, v.personal), true)
	}
	d.goals(v)
	d.nextSteps(v)
	d.analytics(v, g.benchmark)

	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// SafeFileName keeps letters, digits, spaces, '-' and '_' and trims trailing
// spaces.
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// view is the slice of a record the report reads.
type view struct {
	contact     models.Contact
	goals       map[string]interface{}
	business    map[string]interface{}
	personal    map[string]interface{}
	calc        models.AssessmentCalculations
	hasPersonal bool
}

func newView(record map[string]interface{}) view {
	calc, _ := models.CalculationsFromRecord(record)
	personal := models.Section(record, models.SectionPersonalReadiness)
	return view{
		contact:     models.ContactFromRecord(record),
		goals:       models.Section(record, models.SectionBusinessGoals),
		business:    models.Section(record, models.SectionBusinessPerformance),
		personal:    personal,
		calc:        calc,
		hasPersonal: len(personal) > 0,
	}
}

func (v view) goalNumber(field string) float64 {
	n, _ := models.Number(v.goals[field])
	return n
}

func (v view) goalText(field string) string {
	if s, ok := v.goals[field].(string); ok && s != "" {
		return s
	}
	return "N/A"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
