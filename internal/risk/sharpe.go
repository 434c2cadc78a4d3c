package risk

import (
	"fmt"
	"math"
)

// PeriodicRate converts an annual rate into the equivalent compounded rate
// per period: (1+annual)^(1/periodsPerYear) - 1.
func PeriodicRate(annual float64, periodsPerYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPeriods, periodsPerYear)
	}
	if !(annual > -1) || math.IsInf(annual, 1) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidRate, annual)
	}
	return math.Pow(1+annual, 1/float64(periodsPerYear)) - 1, nil
}

// SharpeRatio returns the mean excess return per unit of volatility. The
// ratio is not annualized. Zero volatility yields 0.
func SharpeRatio(mean, volatility, periodicRiskFree float64) float64 {
	if volatility > 0 {
		return (mean - periodicRiskFree) / volatility
	}
	return 0
}
