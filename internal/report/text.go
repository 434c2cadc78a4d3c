package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"riskreport/internal/domain"
)

const rule = "-------------------------"

// WriteText prints r as a plain-text block.
func WriteText(w io.Writer, r *domain.Report) error {
	adj, noun := PeriodNames(r.PeriodsPerYear)
	m := &r.Metrics

	weights := make([]string, len(r.Weights))
	for i, wt := range r.Weights {
		weights[i] = Percent(wt)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n  PORTFOLIO RISK REPORT\n%s\n", rule, rule)
	if r.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", r.Source)
	}
	fmt.Fprintf(&b, "Assets: %s\n", strings.Join(r.Assets, ", "))
	fmt.Fprintf(&b, "Weights: %s\n", strings.Join(weights, ", "))

	fmt.Fprintf(&b, "\nAverage %s return: %s\n", adj, Percent(m.Mean))
	fmt.Fprintf(&b, "Volatility (std dev): %s\n", Percent(m.Volatility))
	fmt.Fprintf(&b, "Sharpe Ratio (%s, based on annual rf=%s): %s\n", adj, RatePercent(r.AnnualRiskFree), Fixed(m.Sharpe, 4))

	fmt.Fprintf(&b, "\nBest %s: %s, %s\n", noun, r.BestLabel, Percent(m.Best))
	fmt.Fprintf(&b, "Worst %s: %s, %s\n", noun, r.WorstLabel, Percent(m.Worst))
	fmt.Fprintf(&b, "Maximum drawdown: %s (worst peak-to-trough decline)\n", Percent(m.Decline()))

	fmt.Fprintf(&b, "\nTotal return over period: %s\n", Percent(m.TotalReturn))
	fmt.Fprintf(&b, "Final wealth (starting from 1 unit): %s\n", Fixed(m.FinalWealth, 4))
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
