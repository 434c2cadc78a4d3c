// Package input validates user-supplied portfolio weights before they reach
// the risk engine. The engine itself does not re-check sign or sum.
package input

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SumTolerance is the allowed absolute deviation of the weight sum from 1.
var SumTolerance = decimal.New(1, -6)

var (
	ErrNotNumeric     = errors.New("please enter only numbers separated by commas")
	ErrWeightCount    = errors.New("wrong number of weights")
	ErrWeightSum      = errors.New("weights must sum to 1")
	ErrNegativeWeight = errors.New("weights must be non-negative (long-only portfolio)")
)

var one = decimal.NewFromInt(1)

// ParseWeights parses a comma-separated weight list such as "0.4,0.3,0.3"
// and validates it for a portfolio of the given number of assets.
func ParseWeights(raw string, assets int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	ds := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, strings.TrimSpace(p))
		}
		ds = append(ds, d)
	}
	if err := check(ds, assets); err != nil {
		return nil, err
	}

	weights := make([]float64, len(ds))
	for i, d := range ds {
		weights[i] = d.InexactFloat64()
	}
	return weights, nil
}

// ValidateWeights applies the ParseWeights checks to numeric weights.
func ValidateWeights(weights []float64, assets int) error {
	ds := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is %v", ErrNotNumeric, i, w)
		}
		ds[i] = decimal.NewFromFloat(w)
	}
	return check(ds, assets)
}

// check validates count, sum and sign, in that order.
func check(ds []decimal.Decimal, assets int) error {
	if len(ds) != assets {
		return fmt.Errorf("%w: you entered %d weights but there are %d assets", ErrWeightCount, len(ds), assets)
	}

	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d)
	}
	if sum.Sub(one).Abs().GreaterThan(SumTolerance) {
		return fmt.Errorf("%w: your sum is %s", ErrWeightSum, sum.StringFixed(6))
	}

	for _, d := range ds {
		if d.IsNegative() {
			return ErrNegativeWeight
		}
	}
	return nil
}

// EqualWeights returns n weights rounded to two decimals that sum to exactly
// 1, with the last weight absorbing the rounding remainder.
func EqualWeights(n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	share := one.DivRound(decimal.NewFromInt(int64(n)), 2)
	weights := make([]decimal.Decimal, n)
	rest := one
	for i := 0; i < n-1; i++ {
		weights[i] = share
		rest = rest.Sub(share)
	}
	weights[n-1] = rest
	return weights
}
