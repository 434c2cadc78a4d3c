package risk

// Extrema holds the largest and smallest values of a series and the index of
// their first occurrence.
type Extrema struct {
	Best       float64
	BestIndex  int
	Worst      float64
	WorstIndex int
}

// FindExtrema scans series left to right. Ties resolve to the earliest index.
func FindExtrema(series []float64) (Extrema, error) {
	if len(series) == 0 {
		return Extrema{}, ErrEmptySeries
	}

	e := Extrema{Best: series[0], Worst: series[0]}
	for i, v := range series[1:] {
		if v > e.Best {
			e.Best, e.BestIndex = v, i+1
		}
		if v < e.Worst {
			e.Worst, e.WorstIndex = v, i+1
		}
	}
	return e, nil
}

// Labels looks up the period labels of the best and worst values. Indices
// outside labels yield empty strings.
func (e Extrema) Labels(labels []string) (best, worst string) {
	return labelAt(labels, e.BestIndex), labelAt(labels, e.WorstIndex)
}

func labelAt(labels []string, i int) string {
	if i < 0 || i >= len(labels) {
		return ""
	}
	return labels[i]
}
