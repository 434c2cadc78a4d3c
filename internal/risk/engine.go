package risk

import (
	"log/slog"
	"time"

	"riskreport/internal/domain"
)

// Engine binds the risk-free rate convention to ComputeReport and attributes
// the result to the period labels and asset names of a ReturnTable. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	annualRiskFree float64
	periodsPerYear int
	log            *slog.Logger
	now            func() time.Time
}

// NewEngine creates an Engine.
//
//   - annualRiskFree: annual risk-free rate as a fraction (e.g. 0.01 for 1%).
//   - periodsPerYear: number of return periods per year (12 for monthly data).
func NewEngine(annualRiskFree float64, periodsPerYear int, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		annualRiskFree: annualRiskFree,
		periodsPerYear: periodsPerYear,
		log:            log.With("component", "risk"),
		now:            time.Now,
	}
}

// WithRates returns a copy of the engine using a different rate convention.
func (e *Engine) WithRates(annualRiskFree float64, periodsPerYear int) *Engine {
	c := *e
	c.annualRiskFree = annualRiskFree
	c.periodsPerYear = periodsPerYear
	return &c
}

// AnnualRiskFree returns the configured annual risk-free rate.
func (e *Engine) AnnualRiskFree() float64 { return e.annualRiskFree }

// PeriodsPerYear returns the configured periods-per-year count.
func (e *Engine) PeriodsPerYear() int { return e.periodsPerYear }

// Run computes the metrics for table under weights and attributes the best
// and worst periods to their labels.
func (e *Engine) Run(table *domain.ReturnTable, weights []float64) (*domain.Report, error) {
	m, err := ComputeReport(table.Returns, weights, e.annualRiskFree, e.periodsPerYear)
	if err != nil {
		return nil, err
	}

	ext := Extrema{BestIndex: m.BestIndex, WorstIndex: m.WorstIndex}
	best, worst := ext.Labels(table.Labels)

	e.log.Debug("risk report computed",
		"periods", m.Periods,
		"assets", len(weights),
		"sharpe", m.Sharpe,
		"maxDrawdown", m.MaxDrawdown,
	)

	return &domain.Report{
		Assets:         append([]string(nil), table.Assets...),
		Weights:        append([]float64(nil), weights...),
		AnnualRiskFree: e.annualRiskFree,
		PeriodsPerYear: e.periodsPerYear,
		BestLabel:      best,
		WorstLabel:     worst,
		Metrics:        *m,
		CreatedAt:      e.now().UTC(),
	}, nil
}
