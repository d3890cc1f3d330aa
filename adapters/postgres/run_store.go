package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"datapulse/domain/analysis"
	"datapulse/domain/core"
	"datapulse/domain/table"
	apperrors "datapulse/internal/errors"
	"datapulse/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RunStore persists completed runs in Postgres. The report and the
// normalized table are stored as separate JSONB payloads so listings can
// skip the table body.
type RunStore struct {
	db *sqlx.DB
}

// Connect opens a Postgres connection pool
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

// NewRunStore creates a run store backed by the given pool
func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

var _ ports.ResultStore = (*RunStore)(nil)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	report        JSONB NOT NULL,
	table_payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs (created_at DESC);
`

// EnsureSchema creates the runs table if it does not exist
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return apperrors.DatabaseError("ensure runs schema", err)
	}
	return nil
}

// SaveRun inserts one completed run
func (s *RunStore) SaveRun(ctx context.Context, report *analysis.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	tableJSON, err := json.Marshal(report.Table)
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}

	query := `INSERT INTO analysis_runs (id, filename, created_at, report, table_payload)
	          VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query,
		string(report.RunID), report.Filename, report.CreatedAt, reportJSON, tableJSON,
	); err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("insert run %s", report.RunID), err)
	}
	return nil
}

// GetRun loads one run including its normalized table
func (s *RunStore) GetRun(ctx context.Context, id core.RunID) (*analysis.Report, error) {
	query := `SELECT report, table_payload FROM analysis_runs WHERE id = $1`

	var reportJSON, tableJSON []byte
	err := s.db.QueryRowContext(ctx, query, string(id)).Scan(&reportJSON, &tableJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("load run %s", id), err)
	}

	var report analysis.Report
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", id, err)
	}
	var tbl table.NormalizedTable
	if err := json.Unmarshal(tableJSON, &tbl); err != nil {
		return nil, fmt.Errorf("unmarshal table for run %s: %w", id, err)
	}
	report.Table = &tbl
	return &report, nil
}

// ListRuns returns recent runs without their table bodies, newest first
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]analysis.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT report FROM analysis_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("list runs", err)
	}
	defer rows.Close()

	var reports []analysis.Report
	for rows.Next() {
		var reportJSON []byte
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, apperrors.DatabaseError("scan run", err)
		}
		var report analysis.Report
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return nil, fmt.Errorf("unmarshal run: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
