package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riskreport/internal/domain"
)

const sampleCSV = `Date,Equity,Bonds
2024-01-31,0.10,0.02
2024-02-29,-0.05,-0.01
2024-03-31,0.00,0.04
`

func sampleTable() *domain.ReturnTable {
	return &domain.ReturnTable{
		Labels:  []string{"2024-01-31", "2024-02-29", "2024-03-31"},
		Assets:  []string{"Equity", "Bonds"},
		Returns: [][]float64{{0.10, 0.02}, {-0.05, -0.01}, {0.00, 0.04}},
	}
}

func assertTablesEqual(t *testing.T, got, want *domain.ReturnTable) {
	t.Helper()
	if strings.Join(got.Assets, ",") != strings.Join(want.Assets, ",") {
		t.Errorf("Assets = %v, want %v", got.Assets, want.Assets)
	}
	if strings.Join(got.Labels, ",") != strings.Join(want.Labels, ",") {
		t.Errorf("Labels = %v, want %v", got.Labels, want.Labels)
	}
	if len(got.Returns) != len(want.Returns) {
		t.Fatalf("got %d periods, want %d", len(got.Returns), len(want.Returns))
	}
	for p := range want.Returns {
		for c := range want.Returns[p] {
			if got.Returns[p][c] != want.Returns[p][c] {
				t.Errorf("Returns[%d][%d] = %v, want %v", p, c, got.Returns[p][c], want.Returns[p][c])
			}
		}
	}
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

func TestLoadReturnsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample_returns.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadReturnsCSV(path)
	if err != nil {
		t.Fatalf("LoadReturnsCSV: %v", err)
	}
	assertTablesEqual(t, table, sampleTable())
}

func TestReadReturnsCSVDateColumnAnywhere(t *testing.T) {
	table, err := ReadReturnsCSV(strings.NewReader("A, Date, B\n0.01, Jan, 0.02\n0.03, Feb, -0.04\n"))
	if err != nil {
		t.Fatalf("ReadReturnsCSV: %v", err)
	}
	if strings.Join(table.Assets, ",") != "A,B" {
		t.Errorf("Assets = %v, want [A B]", table.Assets)
	}
	if table.Labels[1] != "Feb" || table.Returns[1][1] != -0.04 {
		t.Errorf("second row = %q %v, want Feb [0.03 -0.04]", table.Labels[1], table.Returns[1])
	}
}

func TestLoadReturnsCSVMissingFile(t *testing.T) {
	_, err := LoadReturnsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestReadReturnsCSVErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrNoRows},
		{"header only", "Date,A,B\n", ErrNoRows},
		{"no date", "Month,A\nJan,0.1\n", ErrNoDateColumn},
	}
	for _, tc := range cases {
		_, err := ReadReturnsCSV(strings.NewReader(tc.data))
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	_, err := ReadReturnsCSV(strings.NewReader("Date,A,B\nJan,0.1,oops\n"))
	if err == nil || !strings.Contains(err.Error(), `line 2, column "B"`) {
		t.Errorf("unparseable number: err = %v, want line/column detail", err)
	}

	if _, err := ReadReturnsCSV(strings.NewReader("Date,A,B\nJan,0.1\n")); err == nil {
		t.Error("ragged row: expected error")
	}
}

func TestWriteReturnsCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReturnsCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteReturnsCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Date,Equity,Bonds\n2024-01-31,0.1,0.02\n") {
		t.Errorf("unexpected CSV:\n%s", buf.String())
	}

	table, err := ReadReturnsCSV(&buf)
	if err != nil {
		t.Fatalf("ReadReturnsCSV: %v", err)
	}
	assertTablesEqual(t, table, sampleTable())
}

// ---------------------------------------------------------------------------
// Parquet
// ---------------------------------------------------------------------------

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	p, err := ps.datasetPath("balanced")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/data", "returns", "balanced.parquet")
	if p != want {
		t.Errorf("datasetPath mismatch:\n  got  %s\n  want %s", p, want)
	}

	for _, bad := range []string{"", "..", "a/b", `a\b`} {
		if _, err := ps.datasetPath(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("datasetPath(%q) err = %v, want ErrInvalidName", bad, err)
		}
	}
}

func TestParquetStoreWriteReadReturns(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := ps.WriteReturns(ctx, "balanced", sampleTable()); err != nil {
		t.Fatalf("WriteReturns: %v", err)
	}

	got, err := ps.ReadReturns(ctx, "balanced")
	if err != nil {
		t.Fatalf("ReadReturns: %v", err)
	}
	assertTablesEqual(t, got, sampleTable())
}

func TestParquetStoreOverwrite(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := ps.WriteReturns(ctx, "ds", sampleTable()); err != nil {
		t.Fatal(err)
	}
	smaller := &domain.ReturnTable{
		Labels:  []string{"2025-01"},
		Assets:  []string{"Cash"},
		Returns: [][]float64{{0.001}},
	}
	if err := ps.WriteReturns(ctx, "ds", smaller); err != nil {
		t.Fatal(err)
	}

	got, err := ps.ReadReturns(ctx, "ds")
	if err != nil {
		t.Fatal(err)
	}
	assertTablesEqual(t, got, smaller)
}

func TestParquetStoreRejectsRaggedTable(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	table := sampleTable()
	table.Returns[1] = []float64{0.01}

	if err := ps.WriteReturns(context.Background(), "ragged", table); !errors.Is(err, ErrMalformedTable) {
		t.Fatalf("WriteReturns ragged table: err = %v, want ErrMalformedTable", err)
	}
}

func TestWritersRejectShortLabels(t *testing.T) {
	table := sampleTable()
	table.Labels = table.Labels[:1]

	ps := NewParquetStore(t.TempDir())
	if err := ps.WriteReturns(context.Background(), "short", table); !errors.Is(err, ErrMalformedTable) {
		t.Errorf("WriteReturns: err = %v, want ErrMalformedTable", err)
	}

	var buf bytes.Buffer
	if err := WriteReturnsCSV(&buf, table); !errors.Is(err, ErrMalformedTable) {
		t.Errorf("WriteReturnsCSV: err = %v, want ErrMalformedTable", err)
	}
	if buf.Len() != 0 {
		t.Errorf("WriteReturnsCSV wrote %d bytes for a malformed table", buf.Len())
	}
}

func TestParquetStoreReadMissing(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	_, err := ps.ReadReturns(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestParquetStoreListDatasets(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	names, err := ps.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("ListDatasets on empty dir: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListDatasets = %v, want none", names)
	}

	for _, n := range []string{"growth", "balanced"} {
		if err := ps.WriteReturns(ctx, n, sampleTable()); err != nil {
			t.Fatal(err)
		}
	}
	names, err = ps.ListDatasets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "balanced,growth" {
		t.Errorf("ListDatasets = %v, want [balanced growth]", names)
	}
}

func TestPivotReturnsMissingCell(t *testing.T) {
	records := []ReturnRecord{
		{Period: 0, Label: "a", Column: 0, Asset: "X", Return: 0.1},
		{Period: 0, Label: "a", Column: 1, Asset: "Y", Return: 0.2},
		{Period: 1, Label: "b", Column: 0, Asset: "X", Return: 0.3},
	}
	if _, err := pivotReturns("partial", records); err == nil {
		t.Fatal("pivotReturns should reject a missing cell")
	}
}

// ---------------------------------------------------------------------------
// SQLite
// ---------------------------------------------------------------------------

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "reports.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore(%q) returned error: %v", dbPath, err)
	}
	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Errorf("Close() returned error: %v", cerr)
		}
	})
	return store
}

func TestSQLiteStoreOpen(t *testing.T) {
	store := newTestSQLiteStore(t)

	// Verify the store is usable by pinging the database.
	if err := store.db.Ping(); err != nil {
		t.Fatalf("db.Ping() returned error: %v", err)
	}
}

func TestSQLiteStoreSaveGet(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	created := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	r := &domain.Report{
		Source:         "sample_returns.csv",
		Assets:         []string{"Equity", "Bonds"},
		Weights:        []float64{0.6, 0.4},
		AnnualRiskFree: 0.01,
		PeriodsPerYear: 12,
		BestLabel:      "2024-01-31",
		WorstLabel:     "2024-02-29",
		Metrics: domain.Metrics{
			Periods:     3,
			Mean:        0.0166666666666667,
			Volatility:  0.0450924975282289,
			MaxDrawdown: -0.03,
			FinalWealth: 1.048764,
			TotalReturn: 0.048764,
			WorstIndex:  1,
		},
		CreatedAt: created,
	}

	id, err := store.SaveReport(ctx, r)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if id <= 0 || r.ID != id {
		t.Fatalf("SaveReport id = %d, r.ID = %d", id, r.ID)
	}

	got, err := store.GetReport(ctx, id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Source != r.Source || got.BestLabel != r.BestLabel || got.WorstLabel != r.WorstLabel {
		t.Errorf("GetReport labels = %+v", got)
	}
	if got.Metrics != r.Metrics {
		t.Errorf("Metrics round trip:\n  got  %+v\n  want %+v", got.Metrics, r.Metrics)
	}
	if len(got.Weights) != 2 || got.Weights[0] != 0.6 {
		t.Errorf("Weights = %v, want [0.6 0.4]", got.Weights)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	store := newTestSQLiteStore(t)
	_, err := store.GetReport(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreListReports(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, src := range []string{"first", "second", "third"} {
		if _, err := store.SaveReport(ctx, &domain.Report{Source: src, Assets: []string{"A"}, Weights: []float64{1}}); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := store.ListReports(ctx, 2)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("ListReports returned %d reports, want 2", len(reports))
	}
	// Newest first.
	if reports[0].Source != "third" || reports[1].Source != "second" {
		t.Errorf("ListReports order = %q, %q, want third, second", reports[0].Source, reports[1].Source)
	}

	all, err := store.ListReports(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("ListReports(0) returned %d reports, want 3", len(all))
	}
}

func TestLoadShippedSampleReturns(t *testing.T) {
	table, err := LoadReturnsCSV(filepath.Join("..", "..", "sample_returns.csv"))
	if err != nil {
		t.Fatalf("LoadReturnsCSV: %v", err)
	}
	if table.Periods() != 12 {
		t.Errorf("Periods() = %d, want 12", table.Periods())
	}
	if len(table.Assets) != 3 || table.Assets[0] != "Equity" || table.Assets[2] != "Gold" {
		t.Errorf("Assets = %v, want [Equity Bonds Gold]", table.Assets)
	}
	if table.Labels[0] != "2024-01-31" {
		t.Errorf("Labels[0] = %q, want 2024-01-31", table.Labels[0])
	}
}
