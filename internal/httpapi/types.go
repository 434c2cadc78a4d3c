// Package httpapi provides the HTTP REST API for computing and browsing
// portfolio risk reports.
package httpapi

import (
	"time"

	"riskreport/internal/domain"
)

// PeriodJSON identifies one period of the portfolio series.
type PeriodJSON struct {
	Index  int     `json:"index"`
	Label  string  `json:"label,omitempty"`
	Return float64 `json:"return"`
}

// ReportJSON is the JSON representation of a computed report.
type ReportJSON struct {
	ID               int64      `json:"id,omitempty"`
	Source           string     `json:"source,omitempty"`
	Assets           []string   `json:"assets"`
	Weights          []float64  `json:"weights"`
	AnnualRiskFree   float64    `json:"annualRiskFree"`
	PeriodsPerYear   int        `json:"periodsPerYear"`
	Periods          int        `json:"periods"`
	Mean             float64    `json:"mean"`
	Volatility       float64    `json:"volatility"`
	PeriodicRiskFree float64    `json:"periodicRiskFree"`
	Sharpe           float64    `json:"sharpe"`
	Best             PeriodJSON `json:"best"`
	Worst            PeriodJSON `json:"worst"`
	MaxDrawdown      float64    `json:"maxDrawdown"`
	FinalWealth      float64    `json:"finalWealth"`
	TotalReturn      float64    `json:"totalReturn"`
	CreatedAt        string     `json:"createdAt"`
}

// DatasetReportRequest is the body of POST /api/datasets/{name}/report.
type DatasetReportRequest struct {
	Weights        []float64 `json:"weights"`
	RiskFreeRate   *float64  `json:"riskFreeRate,omitempty"`
	PeriodsPerYear *int      `json:"periodsPerYear,omitempty"`
	Save           bool      `json:"save,omitempty"`
}

// DatasetsJSON is the response of GET /api/datasets.
type DatasetsJSON struct {
	Datasets []string `json:"datasets"`
}

// ReportsJSON is the response of GET /api/reports.
type ReportsJSON struct {
	Count   int          `json:"count"`
	Reports []ReportJSON `json:"reports"`
}

func toReportJSON(r *domain.Report) ReportJSON {
	m := &r.Metrics
	return ReportJSON{
		ID:               r.ID,
		Source:           r.Source,
		Assets:           r.Assets,
		Weights:          r.Weights,
		AnnualRiskFree:   r.AnnualRiskFree,
		PeriodsPerYear:   r.PeriodsPerYear,
		Periods:          m.Periods,
		Mean:             m.Mean,
		Volatility:       m.Volatility,
		PeriodicRiskFree: m.PeriodicRiskFree,
		Sharpe:           m.Sharpe,
		Best:             PeriodJSON{Index: m.BestIndex, Label: r.BestLabel, Return: m.Best},
		Worst:            PeriodJSON{Index: m.WorstIndex, Label: r.WorstLabel, Return: m.Worst},
		MaxDrawdown:      m.MaxDrawdown,
		FinalWealth:      m.FinalWealth,
		TotalReturn:      m.TotalReturn,
		CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
