package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"riskreport/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ReportStore = (*SQLiteStore)(nil)

// defaultListLimit caps ListReports when the caller passes no limit.
const defaultListLimit = 50

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	source           TEXT    NOT NULL DEFAULT '',
	assets           TEXT    NOT NULL,
	weights          TEXT    NOT NULL,
	annual_risk_free REAL    NOT NULL,
	periods_per_year INTEGER NOT NULL,
	best_label       TEXT    NOT NULL DEFAULT '',
	worst_label      TEXT    NOT NULL DEFAULT '',
	metrics          TEXT    NOT NULL,
	created_at       INTEGER NOT NULL
)`

// SQLiteStore implements ReportStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// reports table if needed, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating reports table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveReport inserts r, sets r.ID and returns it.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *domain.Report) (int64, error) {
	assets, err := json.Marshal(r.Assets)
	if err != nil {
		return 0, err
	}
	weights, err := json.Marshal(r.Weights)
	if err != nil {
		return 0, err
	}
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return 0, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (source, assets, weights, annual_risk_free, periods_per_year,
			best_label, worst_label, metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Source, string(assets), string(weights), r.AnnualRiskFree, r.PeriodsPerYear,
		r.BestLabel, r.WorstLabel, string(metrics), r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

// GetReport retrieves a single report by its ID.
func (s *SQLiteStore) GetReport(ctx context.Context, id int64) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, selectReports+` WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReports returns the most recent reports, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]domain.Report, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, selectReports+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

const selectReports = `
	SELECT id, source, assets, weights, annual_risk_free, periods_per_year,
		best_label, worst_label, metrics, created_at
	FROM reports`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*domain.Report, error) {
	var (
		r                        domain.Report
		assets, weights, metrics string
		createdAt                int64
	)
	err := sc.Scan(&r.ID, &r.Source, &assets, &weights, &r.AnnualRiskFree, &r.PeriodsPerYear,
		&r.BestLabel, &r.WorstLabel, &metrics, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(assets), &r.Assets); err != nil {
		return nil, fmt.Errorf("report %d assets: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(weights), &r.Weights); err != nil {
		return nil, fmt.Errorf("report %d weights: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &r.Metrics); err != nil {
		return nil, fmt.Errorf("report %d metrics: %w", r.ID, err)
	}
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &r, nil
}
