package risk

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the location and dispersion of a series.
type Stats struct {
	Mean       float64
	Variance   float64 // sample variance, n-1 denominator
	Volatility float64
}

// Dispersion computes the arithmetic mean and the sample standard deviation
// of series. A single-element or constant series has zero variance.
func Dispersion(series []float64) (Stats, error) {
	switch len(series) {
	case 0:
		return Stats{}, ErrEmptySeries
	case 1:
		return Stats{Mean: series[0]}, nil
	}

	// Rounding in the mean would otherwise leave a tiny non-zero variance.
	if floats.Max(series) == floats.Min(series) {
		return Stats{Mean: stat.Mean(series, nil)}, nil
	}

	mean, variance := stat.MeanVariance(series, nil)
	return Stats{
		Mean:       mean,
		Variance:   variance,
		Volatility: math.Sqrt(variance),
	}, nil
}
