// internal/report/format.go
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders 1234.5 as "$1,234.50".
func FormatCurrency(value float64) string {
	return "$" + printer.Sprintf("%.2f", value)
}

// FormatPercentage renders an already-scaled percentage with one decimal.
func FormatPercentage(value float64) string {
	return printer.Sprintf("%.1f%%", value)
}

// FormatNumber renders a whole number with thousands separators.
func FormatNumber(value float64) string {
	return printer.Sprintf("%.0f", value)
}

func FormatMultiple(value float64) string {
	return printer.Sprintf("%.1fx", value)
}

// Score classes
const (
	ClassExcellent = "excellent"
	ClassGood      = "good"
	ClassFair      = "fair"
	ClassPoor      = "poor"
)

func ScoreClass(score int) string {
	switch {
	case score >= 5:
		return ClassExcellent
	case score >= 4:
		return ClassGood
	case score >= 3:
		return ClassFair
	default:
		return ClassPoor
	}
}
