package gather

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"riskreport/internal/domain"
)

// MonthLayout is the period label format of monthly return tables.
const MonthLayout = "2006-01"

// ErrTooFewMonths is returned when the symbols share fewer than two months
// of closing prices, so no return can be computed.
var ErrTooFewMonths = errors.New("fewer than two common months")

// Close is a closing price observed at Time.
type Close struct {
	Time  time.Time
	Price float64
}

// MonthlyReturns builds a table of simple monthly returns from closing
// prices. The last close of each calendar month is used, only months where
// every symbol has a close are kept, and each return is labelled with the
// later of its two months.
func MonthlyReturns(closes map[string][]Close, symbols []string) (*domain.ReturnTable, error) {
	if len(symbols) == 0 {
		return nil, errors.New("no symbols")
	}

	lastClose := make([]map[string]Close, len(symbols))
	var common map[string]bool
	for i, sym := range symbols {
		byMonth := make(map[string]Close)
		for _, c := range closes[sym] {
			key := c.Time.UTC().Format(MonthLayout)
			if prev, ok := byMonth[key]; !ok || c.Time.After(prev.Time) {
				byMonth[key] = c
			}
		}
		lastClose[i] = byMonth

		months := make(map[string]bool, len(byMonth))
		for m := range byMonth {
			if common == nil || common[m] {
				months[m] = true
			}
		}
		common = months
	}

	months := make([]string, 0, len(common))
	for m := range common {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewMonths, len(months))
	}

	table := &domain.ReturnTable{
		Labels:  months[1:],
		Assets:  append([]string(nil), symbols...),
		Returns: make([][]float64, len(months)-1),
	}
	for p := 1; p < len(months); p++ {
		row := make([]float64, len(symbols))
		for i, sym := range symbols {
			prev := lastClose[i][months[p-1]].Price
			if prev <= 0 {
				return nil, fmt.Errorf("%s: non-positive close %v in %s", sym, prev, months[p-1])
			}
			row[i] = lastClose[i][months[p]].Price/prev - 1
		}
		table.Returns[p-1] = row
	}
	return table, nil
}
