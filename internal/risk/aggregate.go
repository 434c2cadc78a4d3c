package risk

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// PortfolioReturns returns one portfolio return per period: the dot product
// of that period's asset returns with weights.
func PortfolioReturns(returns [][]float64, weights []float64) ([]float64, error) {
	series := make([]float64, len(returns))
	for p, row := range returns {
		if len(row) != len(weights) {
			return nil, fmt.Errorf("%w: period %d has %d returns, want %d",
				ErrDimensionMismatch, p, len(row), len(weights))
		}
		series[p] = floats.Dot(row, weights)
	}
	return series, nil
}
