// internal/report/document.go
package report

import (
	"fmt"
	"time"

	"assessment-workers/internal/models"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fontFamily = "Helvetica"

	marginLeft   = 19.0
	marginTop    = 20.0
	marginRight  = 19.0
	marginBottom = 20.0

	lineHeight = 5.5
)

type rgb struct{ r, g, b int }

var (
	colorBlack     = rgb{0, 0, 0}
	colorWhite     = rgb{255, 255, 255}
	colorMuted     = rgb{102, 102, 102}
	colorPrimary   = rgb{0, 123, 255}
	colorSecondary = rgb{108, 117, 125}
	colorSuccess   = rgb{40, 167, 69}
	colorWarning   = rgb{255, 193, 7}
	colorDanger    = rgb{220, 53, 69}
	colorBorder    = rgb{224, 224, 224}
	colorPanel     = rgb{248, 249, 250}
	colorHighlight = rgb{240, 255, 244}
	colorGrid      = rgb{235, 235, 235}
)

var classColors = map[string]rgb{
	ClassExcellent: colorSuccess,
	ClassGood:      colorPrimary,
	ClassFair:      colorWarning,
	ClassPoor:      colorDanger,
}

// document wraps fpdf with the report's typography. Text goes through a
// cp1252 translator since only the core fonts are embedded.
type document struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
}

type card struct {
	title string
	value string
	label string
}

func newDocument(title string, compress bool, now time.Time) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCompression(compress)
	pdf.SetTitle(title, true)
	pdf.SetCreator("assessment-workers", false)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.AliasNbPages("")

	d := &document{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	pageW, _ := pdf.GetPageSize()
	d.width = pageW - marginLeft - marginRight

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		d.textColor(colorMuted)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) textColor(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }
func (d *document) fillColor(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *document) drawColor(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }

func (d *document) font(style string, size float64) {
	d.pdf.SetFont(fontFamily, style, size)
}

// ensureSpace starts a new page when fewer than h millimetres remain.
func (d *document) ensureSpace(h float64) {
	_, pageH := d.pdf.GetPageSize()
	if d.pdf.GetY()+h > pageH-marginBottom {
		d.pdf.AddPage()
	}
}

func (d *document) heading(text string) {
	d.ensureSpace(24)
	d.pdf.Ln(4)
	d.font("B", 16)
	d.textColor(colorBlack)
	d.pdf.CellFormat(d.width, 9, d.tr(text), "", 1, "L", false, 0, "")
	y := d.pdf.GetY()
	d.drawColor(colorPrimary)
	d.pdf.SetLineWidth(0.6)
	d.pdf.Line(marginLeft, y, marginLeft+30, y)
	d.pdf.SetLineWidth(0.2)
	d.pdf.Ln(4)
}

func (d *document) subheading(text string) {
	d.ensureSpace(16)
	d.pdf.Ln(2)
	d.font("B", 12)
	d.textColor(colorBlack)
	d.pdf.CellFormat(d.width, 7, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) paragraph(text string, c rgb, size float64) {
	d.font("", size)
	d.textColor(c)
	d.pdf.MultiCell(d.width, lineHeight, d.tr(text), "", "L", false)
}

func (d *document) table(headers []string, widths []float64, rows [][]string, highlightLast bool) {
	d.ensureSpace(float64(len(rows)+1) * 8)
	d.drawColor(colorBorder)

	d.font("B", 10)
	d.fillColor(colorBlack)
	d.textColor(colorWhite)
	for i, h := range headers {
		d.pdf.CellFormat(widths[i], 8, d.tr(h), "1", 0, "L", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.textColor(colorBlack)
	for r, row := range rows {
		style := ""
		fill := r%2 == 1
		d.fillColor(colorPanel)
		if highlightLast && r == len(rows)-1 {
			style = "B"
			fill = true
			d.fillColor(colorHighlight)
		}
		d.font(style, 10)
		for i, cell := range row {
			d.pdf.CellFormat(widths[i], 7, d.tr(cell), "1", 0, "L", fill, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(3)
}

// cards lays out metric tiles in a single row.
func (d *document) cards(items []card) {
	if len(items) == 0 {
		return
	}
	const (
		gap    = 4.0
		height = 26.0
	)
	d.ensureSpace(height + 4)
	w := (d.width - gap*float64(len(items)-1)) / float64(len(items))
	y := d.pdf.GetY()

	for i, c := range items {
		x := marginLeft + float64(i)*(w+gap)
		d.fillColor(colorPanel)
		d.drawColor(colorBorder)
		d.pdf.Rect(x, y, w, height, "FD")
		d.fillColor(colorPrimary)
		d.pdf.Rect(x, y, 1.2, height, "F")

		d.pdf.SetXY(x+3, y+2)
		d.font("B", 8)
		d.textColor(colorMuted)
		d.pdf.CellFormat(w-4, 5, d.tr(c.title), "", 2, "L", false, 0, "")
		d.pdf.SetX(x + 3)
		d.font("B", 14)
		d.textColor(colorBlack)
		d.pdf.CellFormat(w-4, 9, d.tr(c.value), "", 2, "L", false, 0, "")
		d.pdf.SetX(x + 3)
		d.font("", 7)
		d.textColor(colorMuted)
		d.pdf.CellFormat(w-4, 5, d.tr(c.label), "", 0, "L", false, 0, "")
	}
	d.pdf.SetXY(marginLeft, y+height+4)
}

func (d *document) titleBlock(title string, v view, now time.Time) {
	pageW, _ := d.pdf.GetPageSize()
	d.fillColor(colorBlack)
	d.pdf.Rect(0, 0, pageW, 32, "F")
	d.fillColor(colorPrimary)
	d.pdf.Rect(0, 32, pageW, 1.5, "F")

	d.pdf.SetXY(marginLeft, 10)
	d.font("B", 18)
	d.textColor(colorWhite)
	d.pdf.CellFormat(d.width, 12, d.tr(title), "", 1, "L", false, 0, "")

	d.pdf.SetXY(marginLeft, 42)
	d.font("B", 18)
	d.textColor(colorBlack)
	d.pdf.CellFormat(d.width, 10, d.tr(orNA(v.contact.CompanyName)), "", 1, "L", false, 0, "")
	d.font("", 10)
	d.textColor(colorMuted)
	d.pdf.CellFormat(d.width, 6, "Report generated on "+now.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	d.pdf.Ln(3)

	info := [][2]string{
		{"Owner", orNA(v.contact.FullName())},
		{"Industry", orNA(v.contact.Industry)},
		{"Email", orNA(v.contact.Email)},
		{"Phone", orNA(v.contact.PhoneNumber)},
		{"Employees", FormatNumber(v.goalNumber(models.FieldNumberOfEmployees))},
		{"Exit Timeline", v.goalText(models.FieldPlannedExitTimeline)},
	}
	half := d.width / 2
	for i := 0; i < len(info); i += 2 {
		for j := 0; j < 2; j++ {
			d.font("B", 9)
			d.textColor(colorMuted)
			d.pdf.CellFormat(28, 6, d.tr(info[i+j][0]), "", 0, "L", false, 0, "")
			d.font("", 10)
			d.textColor(colorBlack)
			d.pdf.CellFormat(half-28, 6, d.tr(info[i+j][1]), "", 0, "L", false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d *document) executiveSummary(v view) {
	d.heading("Executive Summary")
	items := []card{{"Company Transferability Score", FormatPercentage(v.calc.CompanyTransferabilityScore), "Overall business readiness for transfer"}}
	if v.hasPersonal {
		items = append(items, card{"Personal Readiness Score", FormatPercentage(v.calc.PersonalReadinessScore), "Owner readiness for business exit"})
	}
	items = append(items,
		card{"Estimated Business Value", FormatCurrency(v.calc.CurrentValueInformationProvided), "Based on provided information"},
		card{"Value Range (High)", FormatCurrency(v.calc.RangeOfValueHigh), "Optimistic valuation potential"},
	)
	d.cards(items)
}

func (d *document) financialPerformance(v view) {
	d.heading("Financial Performance")
	d.cards([]card{
		{"Last Year Revenue", FormatCurrency(v.goalNumber(models.FieldLastYearRevenue)), "Previous year performance"},
		{"Current Year Revenue (Est.)", FormatCurrency(v.goalNumber(models.FieldCurrentYearEstimatedRevenue)), "Projected current year"},
		{"Last Year Profit", FormatCurrency(v.goalNumber(models.FieldLastYearProfit)), "Net profit achieved"},
	})
	d.cards([]card{
		{"Current Year Profit (Est.)", FormatCurrency(v.goalNumber(models.FieldCurrentYearEstimatedProfit)), "Projected current year profit"},
		{"Number of Employees", FormatNumber(v.goalNumber(models.FieldNumberOfEmployees)), "Current workforce size"},
		{"Revenue per Employee", FormatCurrency(v.calc.RevenuePerEmployee), "Last year revenue per head"},
	})
	d.table(
		[]string{"Financial Metric", "Value"},
		[]float64{d.width * 0.6, d.width * 0.4},
		[][]string{
			{"Current Business Value (Self-Reported)", FormatCurrency(v.goalNumber(models.FieldCurrentBusinessValue))},
			{"Target Sale Price", FormatCurrency(v.goalNumber(models.FieldTargetSalePrice))},
			{"Revenue per Employee", FormatCurrency(v.calc.RevenuePerEmployee)},
			{"Two-Year Average Revenue", FormatCurrency(v.calc.TwoYearAverageRevenue)},
			{"Two-Year Average Profit", FormatCurrency(v.calc.TwoYearAverageProfit)},
		},
		false,
	)
}

func (d *document) valuation(v view) {
	d.pdf.AddPage()
	d.heading("Industry Analysis & Valuation")
	d.table(
		[]string{"Metric", "Value", "Industry Benchmark"},
		[]float64{d.width * 0.45, d.width * 0.25, d.width * 0.30},
		[][]string{
			{"EBITDA Multiple", FormatMultiple(v.calc.EBITDAMultiple), "Industry Standard"},
			{"EBITDA Margin", FormatPercentage(v.calc.EBITDAMargin), "Industry Average"},
			{"Last Year Profit Margin", FormatPercentage(v.calc.LastYearProfitPercentage * 100), "Company Performance"},
			{"Current Year Profit Margin (Est.)", FormatPercentage(v.calc.CurrentYearProfitPercentage * 100), "Company Performance"},
			{"Revenue to Profit Multiple", FormatMultiple(v.calc.TwoYearAverageSelfReportedMultiple), "Two-Year Average"},
			{"Profit Gap / Surplus", FormatCurrency(v.calc.ProfitGapSurplus), "Against Industry Margin"},
		},
		false,
	)

	d.subheading("Valuation Range")
	d.table(
		[]string{"Valuation Method", "Amount"},
		[]float64{d.width * 0.6, d.width * 0.4},
		[][]string{
			{"Conservative Value (Low)", FormatCurrency(v.calc.RangeOfValueLow)},
			{"Current Value (Based on Data)", FormatCurrency(v.calc.CurrentValueInformationProvided)},
			{"Optimistic Value (High)", FormatCurrency(v.calc.RangeOfValueHigh)},
			{"Owner's Stated Value", FormatCurrency(v.goalNumber(models.FieldCurrentBusinessValue))},
			{"Target Sale Price", FormatCurrency(v.goalNumber(models.FieldTargetSalePrice))},
			{"Value Opportunity", FormatCurrency(v.calc.ExitPlanningValueOpportunity)},
		},
		true,
	)
}

func (d *document) metricsSection(title string, score float64, g Grouping, personal bool) {
	d.pdf.AddPage()
	d.heading(title)

	y := d.pdf.GetY()
	d.fillColor(colorPanel)
	d.drawColor(colorBorder)
	d.pdf.Rect(marginLeft, y, d.width, 18, "FD")
	d.pdf.SetXY(marginLeft+4, y+3)
	d.font("B", 11)
	d.textColor(colorMuted)
	d.pdf.CellFormat(40, 12, "Overall Score", "", 0, "L", false, 0, "")
	d.font("B", 20)
	d.textColor(colorPrimary)
	d.pdf.CellFormat(d.width-48, 12, FormatPercentage(score), "", 0, "R", false, 0, "")
	d.pdf.SetXY(marginLeft, y+22)

	if g.Empty() {
		d.paragraph("No scored answers were provided for this section.", colorMuted, 10)
		return
	}

	prefix, noun := "", "These areas"
	if personal {
		prefix, noun = "Personal ", "These personal areas"
	}

	if len(g.NeedsImprovement) > 0 {
		d.subheading(prefix + "Areas That Need Improvement (Scores 1-3)")
		intro := noun + " require immediate attention to increase your business transferability and exit readiness."
		if personal {
			intro = noun + " require attention to improve your readiness for a successful business exit."
		}
		d.paragraph(intro, colorMuted, 10)
		d.pdf.Ln(2)
		for _, m := range g.NeedsImprovement {
			d.metricEntry(m, "IMPROVEMENTS TO CONSIDER:")
		}
	}

	if len(g.PerformingWell) > 0 {
		d.subheading(prefix + "Areas Performing Well (Scores 4-6)")
		d.paragraph(noun+" are performing well. Here are ways to continue improving them further.", colorMuted, 10)
		d.pdf.Ln(2)
		for _, m := range g.PerformingWell {
			d.metricEntry(m, "HOW TO STAY ON TRACK:")
		}
	}
}

func (d *document) metricEntry(m ScoredMetric, label string) {
	feedback := m.Feedback(m.Score)
	d.font("", 9)
	lines := len(d.pdf.SplitLines([]byte(d.tr(feedback)), d.width))
	d.ensureSpace(22 + float64(lines)*4.5)

	d.font("B", 10)
	d.textColor(colorBlack)
	d.pdf.MultiCell(d.width, lineHeight, d.tr(m.Question), "", "L", false)

	class := ScoreClass(m.Score)
	d.font("B", 9)
	d.textColor(colorMuted)
	d.pdf.CellFormat(22, 6, "Your Score:", "", 0, "L", false, 0, "")
	d.textColor(classColors[class])
	d.pdf.CellFormat(d.width-22, 6, fmt.Sprintf("%d/6 (%s)", m.Score, class), "", 1, "L", false, 0, "")

	d.font("B", 8)
	d.textColor(colorBlack)
	d.pdf.CellFormat(d.width, 5, label, "", 1, "L", false, 0, "")
	d.font("", 9)
	d.textColor(colorMuted)
	d.pdf.MultiCell(d.width, 4.5, d.tr(feedback), "", "L", false)

	y := d.pdf.GetY() + 2
	d.drawColor(colorBorder)
	d.pdf.Line(marginLeft, y, marginLeft+d.width, y)
	d.pdf.SetY(y + 3)
}

func (d *document) goals(v view) {
	d.heading("Business Goals & Exit Planning")
	d.table(
		[]string{"Goal", "Value"},
		[]float64{d.width * 0.45, d.width * 0.55},
		[][]string{
			{"Exit Timeline", v.goalText(models.FieldPlannedExitTimeline)},
			{"Business Readiness", v.goalText(models.FieldBusinessReadiness)},
			{"Would Accept Offer", cases.Title(language.English).String(v.goalText(models.FieldWouldAcceptOffer))},
			{"Target Sale Price", FormatCurrency(v.goalNumber(models.FieldTargetSalePrice))},
		},
		false,
	)
}

func (d *document) nextSteps(v view) {
	d.heading("Next Steps & Action Plan")

	d.subheading("Business Transferability Focus")
	d.paragraph("Your Score: "+FormatPercentage(v.calc.CompanyTransferabilityScore), colorBlack, 10)
	d.paragraph(BusinessGuidance(v.calc.CompanyTransferabilityScore), colorMuted, 10)

	if v.hasPersonal {
		d.subheading("Personal Readiness Focus")
		d.paragraph("Your Score: "+FormatPercentage(v.calc.PersonalReadinessScore), colorBlack, 10)
		d.paragraph(PersonalGuidance(v.calc.PersonalReadinessScore), colorMuted, 10)
	}

	d.subheading("Priority Actions")
	for _, action := range priorityActions {
		d.paragraph("• "+action, colorMuted, 10)
	}
}

func (d *document) analytics(v view, benchmark float64) {
	d.pdf.AddPage()
	d.heading("Assessment Analytics")

	y := d.pdf.GetY()
	d.barChart(marginLeft, y, d.width, 100, v.calc.CompanyTransferabilityScore, v.calc.PersonalReadinessScore, benchmark)
	d.bellCurve(marginLeft, y+110, d.width, 100, v.calc.CompanyTransferabilityScore, v.calc.PersonalReadinessScore)
}
