// Package report renders risk reports for terminals and JSON consumers.
package report

import (
	"math"

	"github.com/shopspring/decimal"
)

// Percent formats a fraction as a percentage with two decimals, e.g.
// 0.0123 -> "1.23%". NaN and infinities render as "n/a".
func Percent(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(x).Shift(2).StringFixed(2) + "%"
}

// Fixed formats x with the given number of decimals.
func Fixed(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}

// RatePercent formats an annual rate without trailing zeros, e.g. 0.01 -> "1%".
func RatePercent(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(x).Shift(2).String() + "%"
}

// PeriodNames returns the adjective and noun for a return frequency, e.g.
// 12 -> ("monthly", "month").
func PeriodNames(periodsPerYear int) (adjective, noun string) {
	switch periodsPerYear {
	case 1:
		return "annual", "year"
	case 4:
		return "quarterly", "quarter"
	case 12:
		return "monthly", "month"
	case 52:
		return "weekly", "week"
	case 252, 365:
		return "daily", "day"
	default:
		return "periodic", "period"
	}
}
