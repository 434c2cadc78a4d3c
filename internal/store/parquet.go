package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"riskreport/internal/domain"
)

// Compile-time interface check.
var _ ReturnStore = (*ParquetStore)(nil)

// ParquetStore implements ReturnStore using one Parquet file per dataset.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ReturnRecord is the Parquet schema for one asset's return in one period.
// Tables are stored in long format and pivoted back on read.
type ReturnRecord struct {
	Period int32   `parquet:"period"` // row index in the table
	Label  string  `parquet:"label"`
	Column int32   `parquet:"column"` // asset index in the table
	Asset  string  `parquet:"asset"`
	Return float64 `parquet:"return"`
}

// WriteReturns writes table to <DataDir>/returns/<name>.parquet.
func (s *ParquetStore) WriteReturns(_ context.Context, name string, table *domain.ReturnTable) error {
	path, err := s.datasetPath(name)
	if err != nil {
		return err
	}

	if err := checkTable(table); err != nil {
		return fmt.Errorf("dataset %s: %w", name, err)
	}

	records := make([]ReturnRecord, 0, table.Periods()*len(table.Assets))
	for p, row := range table.Returns {
		for c, v := range row {
			records = append(records, ReturnRecord{
				Period: int32(p),
				Label:  table.Labels[p],
				Column: int32(c),
				Asset:  table.Assets[c],
				Return: v,
			})
		}
	}

	if err := writeParquetFile(path, records); err != nil {
		return fmt.Errorf("writing dataset %s: %w", name, err)
	}
	return nil
}

// ReadReturns reads the dataset stored under name and pivots it back into a
// rectangular table with the original period and asset order.
func (s *ParquetStore) ReadReturns(_ context.Context, name string) (*domain.ReturnTable, error) {
	path, err := s.datasetPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset %s: %w", name, ErrNotFound)
	}

	records, err := readParquetFile[ReturnRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", name, err)
	}
	return pivotReturns(name, records)
}

// ListDatasets lists the names of all stored datasets.
func (s *ParquetStore) ListDatasets(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "returns"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".parquet") {
			names = append(names, strings.TrimSuffix(e.Name(), ".parquet"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// datasetPath returns the filesystem path for a dataset.
// Layout: <dataDir>/returns/<name>.parquet
func (s *ParquetStore) datasetPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.DataDir, "returns", name+".parquet"), nil
}

func pivotReturns(name string, records []ReturnRecord) (*domain.ReturnTable, error) {
	var periods, columns int
	for _, r := range records {
		periods = max(periods, int(r.Period)+1)
		columns = max(columns, int(r.Column)+1)
	}
	if periods == 0 {
		return nil, fmt.Errorf("dataset %s: %w", name, ErrNoRows)
	}

	table := &domain.ReturnTable{
		Labels:  make([]string, periods),
		Assets:  make([]string, columns),
		Returns: make([][]float64, periods),
	}
	seen := make([][]bool, periods)
	for p := range table.Returns {
		table.Returns[p] = make([]float64, columns)
		seen[p] = make([]bool, columns)
	}

	for _, r := range records {
		p, c := int(r.Period), int(r.Column)
		if p < 0 || c < 0 {
			return nil, fmt.Errorf("dataset %s: negative index in record %+v", name, r)
		}
		table.Labels[p] = r.Label
		table.Assets[c] = r.Asset
		table.Returns[p][c] = r.Return
		seen[p][c] = true
	}

	for p := range seen {
		for c, ok := range seen[p] {
			if !ok {
				return nil, fmt.Errorf("dataset %s: period %d has no return for column %d", name, p, c)
			}
		}
	}
	return table, nil
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
