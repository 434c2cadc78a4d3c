package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"riskreport/internal/domain"
)

// DateColumn is the header of the period label column in return CSVs.
const DateColumn = "Date"

// LoadReturnsCSV reads a return file with a header row. The Date column
// supplies the period labels and every other column is an asset, in header
// order. Returns are fractions (0.0123 = 1.23%).
func LoadReturnsCSV(path string) (*domain.ReturnTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadReturnsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading CSV %s: %w", path, err)
	}
	return table, nil
}

// ReadReturnsCSV parses return CSV data from r. See LoadReturnsCSV.
func ReadReturnsCSV(r io.Reader) (*domain.ReturnTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}

	dateCol := -1
	var assets []string
	var assetCols []int
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == DateColumn && dateCol < 0 {
			dateCol = i
			continue
		}
		assets = append(assets, h)
		assetCols = append(assetCols, i)
	}
	if dateCol < 0 {
		return nil, ErrNoDateColumn
	}

	table := &domain.ReturnTable{Assets: assets}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make([]float64, len(assetCols))
		for j, col := range assetCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, assets[j], err)
			}
			row[j] = v
		}
		table.Labels = append(table.Labels, strings.TrimSpace(rec[dateCol]))
		table.Returns = append(table.Returns, row)
	}

	if len(table.Returns) == 0 {
		return nil, ErrNoRows
	}
	return table, nil
}

// WriteReturnsCSV writes table in the layout LoadReturnsCSV reads.
func WriteReturnsCSV(w io.Writer, table *domain.ReturnTable) error {
	if err := checkTable(table); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{DateColumn}, table.Assets...)); err != nil {
		return err
	}
	for i, row := range table.Returns {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, table.Labels[i])
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
