package report

import (
	"fmt"
	"io"
	"strings"

	"riskreport/internal/risk"
)

// WritePath prints the wealth path one period per line. labels may be
// shorter than path; missing labels print as the period number.
func WritePath(w io.Writer, labels []string, path []risk.PathPoint) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%-12s %10s %10s %10s\n", "Period", "Wealth", "Peak", "Drawdown")
	for i, p := range path {
		label := fmt.Sprintf("#%d", i+1)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		fmt.Fprintf(&b, "%-12s %10s %10s %10s\n", label, Fixed(p.Wealth, 4), Fixed(p.Peak, 4), Percent(p.Drawdown))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
