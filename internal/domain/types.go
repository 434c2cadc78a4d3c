// Package domain defines the core value types shared across the risk report
// packages: return tables, risk metrics, and attributed reports.
package domain

import (
	"math"
	"time"
)

// ReturnTable holds per-asset periodic returns, one row per period. Labels
// and Returns are aligned positionally; Assets names the columns of every
// row.
type ReturnTable struct {
	Labels  []string    `json:"labels"`
	Assets  []string    `json:"assets"`
	Returns [][]float64 `json:"returns"` // fractional, 0.0123 = 1.23%
}

// Periods returns the number of rows in the table.
func (t *ReturnTable) Periods() int {
	return len(t.Returns)
}

// Metrics is the risk summary of a portfolio return series. All ratios are on
// the same period basis as the input series.
type Metrics struct {
	Periods          int     `json:"periods"`
	Mean             float64 `json:"mean"`
	Volatility       float64 `json:"volatility"`
	PeriodicRiskFree float64 `json:"periodicRiskFree"`
	Sharpe           float64 `json:"sharpe"`
	Best             float64 `json:"best"`
	BestIndex        int     `json:"bestIndex"`
	Worst            float64 `json:"worst"`
	WorstIndex       int     `json:"worstIndex"`
	MaxDrawdown      float64 `json:"maxDrawdown"` // <= 0
	FinalWealth      float64 `json:"finalWealth"`
	TotalReturn      float64 `json:"totalReturn"`
}

// Decline returns the maximum drawdown as a positive fraction.
func (m *Metrics) Decline() float64 {
	return math.Abs(m.MaxDrawdown)
}

// Report is a Metrics record attributed to the inputs that produced it.
type Report struct {
	ID             int64     `json:"id,omitempty"`
	Source         string    `json:"source,omitempty"` // CSV path or dataset name
	Assets         []string  `json:"assets"`
	Weights        []float64 `json:"weights"`
	AnnualRiskFree float64   `json:"annualRiskFree"`
	PeriodsPerYear int       `json:"periodsPerYear"`
	BestLabel      string    `json:"bestLabel"`
	WorstLabel     string    `json:"worstLabel"`
	Metrics        Metrics   `json:"metrics"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ReportRequest is the transport-neutral input for an ad-hoc report. Nil
// rate fields fall back to the server's configured convention.
type ReportRequest struct {
	Labels         []string    `json:"labels,omitempty"`
	Assets         []string    `json:"assets,omitempty"`
	Returns        [][]float64 `json:"returns"`
	Weights        []float64   `json:"weights"`
	RiskFreeRate   *float64    `json:"riskFreeRate,omitempty"`
	PeriodsPerYear *int        `json:"periodsPerYear,omitempty"`
	Save           bool        `json:"save,omitempty"`
}

// Table returns the request's returns as a ReturnTable.
func (r *ReportRequest) Table() *ReturnTable {
	return &ReturnTable{Labels: r.Labels, Assets: r.Assets, Returns: r.Returns}
}

// AssetCount is the number of assets the weights must cover: the named
// assets if given, else the width of the first return row, else the number
// of weights.
func (r *ReportRequest) AssetCount() int {
	switch {
	case len(r.Assets) > 0:
		return len(r.Assets)
	case len(r.Returns) > 0:
		return len(r.Returns[0])
	default:
		return len(r.Weights)
	}
}
