package risk

// Drawdown summarizes the cumulative wealth path of a return series that
// starts from one unit of wealth.
type Drawdown struct {
	Max         float64 // most negative (wealth-peak)/peak, <= 0
	FinalWealth float64
	TotalReturn float64 // FinalWealth - 1
}

// PathPoint is the state of the wealth path after one period.
type PathPoint struct {
	Wealth   float64
	Peak     float64
	Drawdown float64
}

// TrackDrawdown replays series as a wealth path and records the deepest
// decline from the running peak.
func TrackDrawdown(series []float64) Drawdown {
	d := Drawdown{FinalWealth: 1}
	walkWealth(series, func(p PathPoint) {
		d.FinalWealth = p.Wealth
		if p.Drawdown < d.Max {
			d.Max = p.Drawdown
		}
	})
	d.TotalReturn = d.FinalWealth - 1
	return d
}

// DrawdownPath returns the wealth, peak and drawdown after every period.
func DrawdownPath(series []float64) []PathPoint {
	path := make([]PathPoint, 0, len(series))
	walkWealth(series, func(p PathPoint) {
		path = append(path, p)
	})
	return path
}

// walkWealth folds series in order. The peak starts at the initial wealth of
// 1, so a loss in the first period already counts as a drawdown.
func walkWealth(series []float64, visit func(PathPoint)) {
	wealth, peak := 1.0, 1.0
	for _, r := range series {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		visit(PathPoint{
			Wealth:   wealth,
			Peak:     peak,
			Drawdown: (wealth - peak) / peak,
		})
	}
}
