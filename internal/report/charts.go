// internal/report/charts.go
package report

import (
	"fmt"
	"math"
)

// Reference population for the distribution chart.
const (
	DistributionMean   = 50.0
	DistributionStdDev = 15.0
)

// NormalDensity is the probability density of x under N(mean, std²).
func NormalDensity(x, mean, std float64) float64 {
	z := (x - mean) / std
	return math.Exp(-0.5*z*z) / (std * math.Sqrt(2*math.Pi))
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// plot is the drawable rectangle inside a chart frame.
type plot struct {
	x, y, w, h float64
}

// px maps a 0-100 value onto the horizontal axis.
func (p plot) px(v float64) float64 { return p.x + p.w*clampPercent(v)/100 }

// py maps a value in [0, max] onto the vertical axis.
func (p plot) py(v, max float64) float64 { return p.y + p.h - p.h*v/max }

func (d *document) chartFrame(x, y, w, h float64, title string) plot {
	d.font("B", 12)
	d.textColor(colorBlack)
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, 7, d.tr(title), "", 0, "C", false, 0, "")

	p := plot{x: x + 16, y: y + 12, w: w - 22, h: h - 28}
	d.drawColor(colorBlack)
	d.pdf.SetLineWidth(0.3)
	d.pdf.Line(p.x, p.y, p.x, p.y+p.h)
	d.pdf.Line(p.x, p.y+p.h, p.x+p.w, p.y+p.h)
	d.pdf.SetLineWidth(0.2)
	return p
}

func (d *document) dashed(on bool) {
	if on {
		d.pdf.SetDashPattern([]float64{2, 1.5}, 0)
		return
	}
	d.pdf.SetDashPattern([]float64{}, 0)
}

// barChart compares both readiness scores against the benchmark line.
func (d *document) barChart(x, y, w, h, business, personal, benchmark float64) {
	p := d.chartFrame(x, y, w, h, "Assessment Scores Overview")

	d.font("", 8)
	for tick := 0.0; tick <= 100; tick += 20 {
		ty := p.py(tick, 100)
		if tick > 0 {
			d.drawColor(colorGrid)
			d.pdf.Line(p.x, ty, p.x+p.w, ty)
		}
		d.textColor(colorMuted)
		label := fmt.Sprintf("%.0f%%", tick)
		d.pdf.Text(p.x-2-d.pdf.GetStringWidth(label), ty+1, label)
	}

	bars := []struct {
		label string
		value float64
		color rgb
	}{
		{"Business Transferability", business, colorPrimary},
		{"Personal Readiness", personal, colorSecondary},
	}
	slot := p.w / float64(len(bars))
	barW := slot / 2
	for i, b := range bars {
		v := clampPercent(b.value)
		bx := p.x + float64(i)*slot + (slot-barW)/2
		by := p.py(v, 100)
		d.fillColor(b.color)
		d.pdf.Rect(bx, by, barW, p.y+p.h-by, "F")

		d.font("B", 10)
		d.textColor(colorBlack)
		value := FormatPercentage(b.value)
		d.pdf.Text(bx+(barW-d.pdf.GetStringWidth(value))/2, by-2, value)

		d.font("", 9)
		d.pdf.Text(bx+(barW-d.pdf.GetStringWidth(b.label))/2, p.y+p.h+6, b.label)
	}

	ly := p.py(clampPercent(benchmark), 100)
	d.drawColor(colorSuccess)
	d.pdf.SetLineWidth(0.5)
	d.dashed(true)
	d.pdf.Line(p.x, ly, p.x+p.w, ly)
	d.dashed(false)
	d.pdf.SetLineWidth(0.2)

	d.font("I", 8)
	d.textColor(colorSuccess)
	label := fmt.Sprintf("Excellent (%.0f%%+)", benchmark)
	d.pdf.Text(p.x+p.w-d.pdf.GetStringWidth(label), ly-1.5, label)

	d.font("", 9)
	d.textColor(colorMuted)
	d.pdf.TransformBegin()
	d.pdf.TransformRotate(90, x+3, p.y+p.h/2+10)
	d.pdf.Text(x+3, p.y+p.h/2+10, "Score (%)")
	d.pdf.TransformEnd()
}

// bellCurve places both scores on the reference normal distribution.
func (d *document) bellCurve(x, y, w, h, business, personal float64) {
	p := d.chartFrame(x, y, w, h, "Score Distribution Analysis")
	peak := NormalDensity(DistributionMean, DistributionMean, DistributionStdDev) * 1.15

	d.font("", 8)
	d.textColor(colorMuted)
	for tick := 0.0; tick <= 100; tick += 20 {
		label := fmt.Sprintf("%.0f", tick)
		d.pdf.Text(p.px(tick)-d.pdf.GetStringWidth(label)/2, p.y+p.h+4, label)
	}

	markers := []struct {
		k     float64
		label string
	}{
		{-2, "-2 SD"}, {-1, "-1 SD"}, {0, "Mean"}, {1, "+1 SD"}, {2, "+2 SD"},
	}
	d.drawColor(colorSecondary)
	d.dashed(true)
	for _, m := range markers {
		mx := p.px(DistributionMean + m.k*DistributionStdDev)
		d.pdf.Line(mx, p.y+4, mx, p.y+p.h)
		d.pdf.Text(mx-d.pdf.GetStringWidth(m.label)/2, p.y+3, m.label)
	}
	d.dashed(false)

	d.drawColor(colorBlack)
	d.pdf.SetLineWidth(0.6)
	d.pdf.MoveTo(p.px(0), p.py(NormalDensity(0, DistributionMean, DistributionStdDev), peak))
	for s := 1.0; s <= 100; s++ {
		d.pdf.LineTo(p.px(s), p.py(NormalDensity(s, DistributionMean, DistributionStdDev), peak))
	}
	d.pdf.DrawPath("D")
	d.pdf.SetLineWidth(0.2)

	scores := []struct {
		label string
		value float64
		color rgb
	}{
		{"Business", business, colorPrimary},
		{"Personal", personal, colorSuccess},
	}
	for i, s := range scores {
		v := clampPercent(s.value)
		sx := p.px(v)
		sy := p.py(NormalDensity(v, DistributionMean, DistributionStdDev), peak)
		d.drawColor(s.color)
		d.fillColor(s.color)
		d.pdf.SetLineWidth(0.5)
		d.pdf.Line(sx, p.y+p.h, sx, sy)
		d.pdf.SetLineWidth(0.2)
		d.pdf.Circle(sx, sy, 1.4, "F")

		legendY := p.y + 8 + float64(i)*5
		d.pdf.Rect(p.x+3, legendY-2.5, 3, 3, "F")
		d.font("", 8)
		d.textColor(colorBlack)
		d.pdf.Text(p.x+8, legendY, fmt.Sprintf("%s (%s)", s.label, FormatPercentage(s.value)))
	}

	d.font("", 9)
	d.textColor(colorMuted)
	axis := "Assessment Score (%)"
	d.pdf.Text(p.x+(p.w-d.pdf.GetStringWidth(axis))/2, p.y+p.h+10, axis)
	d.pdf.TransformBegin()
	d.pdf.TransformRotate(90, x+3, p.y+p.h/2+15)
	d.pdf.Text(x+3, p.y+p.h/2+15, "Probability Density")
	d.pdf.TransformEnd()
}
