// Package store defines storage for return datasets and computed risk
// reports, plus the CSV loader for hand-maintained return files.
package store

import (
	"context"
	"errors"
	"fmt"

	"riskreport/internal/domain"
)

var (
	// ErrNotFound is returned when a dataset or report does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRows is returned when a return file has a header but no data.
	ErrNoRows = errors.New("no data rows")

	// ErrNoDateColumn is returned when a CSV header lacks the Date column.
	ErrNoDateColumn = errors.New("no Date column")

	// ErrInvalidName is returned for dataset names that are not a single
	// path element.
	ErrInvalidName = errors.New("invalid dataset name")

	// ErrMalformedTable is returned when a table's labels or rows do not
	// line up with its periods and assets.
	ErrMalformedTable = errors.New("malformed return table")
)

// checkTable verifies one label per period and one return per asset in
// every period.
func checkTable(table *domain.ReturnTable) error {
	if len(table.Labels) != len(table.Returns) {
		return fmt.Errorf("%w: %d labels for %d periods", ErrMalformedTable, len(table.Labels), len(table.Returns))
	}
	for p, row := range table.Returns {
		if len(row) != len(table.Assets) {
			return fmt.Errorf("%w: period %d has %d returns for %d assets", ErrMalformedTable, p, len(row), len(table.Assets))
		}
	}
	return nil
}

// ReturnStore persists and retrieves named return tables.
type ReturnStore interface {
	// WriteReturns stores table under name, replacing any previous dataset.
	WriteReturns(ctx context.Context, name string, table *domain.ReturnTable) error

	// ReadReturns loads the dataset stored under name.
	ReadReturns(ctx context.Context, name string) (*domain.ReturnTable, error)

	// ListDatasets returns the sorted names of all stored datasets.
	ListDatasets(ctx context.Context) ([]string, error)
}

// ReportStore persists and retrieves computed risk reports.
type ReportStore interface {
	// SaveReport inserts a report and returns its assigned ID.
	SaveReport(ctx context.Context, r *domain.Report) (int64, error)

	// GetReport retrieves a single report by its ID.
	GetReport(ctx context.Context, id int64) (*domain.Report, error)

	// ListReports returns the most recent reports, newest first, up to limit.
	ListReports(ctx context.Context, limit int) ([]domain.Report, error)
}
