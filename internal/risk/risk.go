// Package risk computes risk and performance statistics for a weighted
// long-only portfolio from per-asset periodic returns.
//
// The functions in this package are pure: they never log, never mutate their
// inputs, and return the same result for the same arguments.
package risk

import (
	"errors"

	"riskreport/internal/domain"
)

var (
	// ErrDimensionMismatch is returned when a period's asset-return count
	// differs from the number of weights.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptySeries is returned when a statistic is requested on a
	// zero-length series.
	ErrEmptySeries = errors.New("empty series")

	// ErrInvalidPeriods is returned for a non-positive periods-per-year count.
	ErrInvalidPeriods = errors.New("periods per year must be positive")

	// ErrInvalidRate is returned for an annual risk-free rate that is not a
	// finite number greater than -1.
	ErrInvalidRate = errors.New("annual risk-free rate must be greater than -1")
)

// ComputeReport aggregates the asset returns into a portfolio series and
// summarizes it. Errors from the individual steps are returned unchanged.
func ComputeReport(returns [][]float64, weights []float64, annualRiskFree float64, periodsPerYear int) (*domain.Metrics, error) {
	series, err := PortfolioReturns(returns, weights)
	if err != nil {
		return nil, err
	}

	stats, err := Dispersion(series)
	if err != nil {
		return nil, err
	}
	ext, err := FindExtrema(series)
	if err != nil {
		return nil, err
	}
	dd := TrackDrawdown(series)

	rf, err := PeriodicRate(annualRiskFree, periodsPerYear)
	if err != nil {
		return nil, err
	}

	return &domain.Metrics{
		Periods:          len(series),
		Mean:             stats.Mean,
		Volatility:       stats.Volatility,
		PeriodicRiskFree: rf,
		Sharpe:           SharpeRatio(stats.Mean, stats.Volatility, rf),
		Best:             ext.Best,
		BestIndex:        ext.BestIndex,
		Worst:            ext.Worst,
		WorstIndex:       ext.WorstIndex,
		MaxDrawdown:      dd.Max,
		FinalWealth:      dd.FinalWealth,
		TotalReturn:      dd.TotalReturn,
	}, nil
}
