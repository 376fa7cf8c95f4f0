package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WADELABS/negative-space/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	report_id   TEXT PRIMARY KEY,
	row_key     TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	total_gaps  INTEGER NOT NULL,
	density     REAL NOT NULL,
	blocking    INTEGER NOT NULL,
	payload     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gap_counts (
	report_id   TEXT NOT NULL REFERENCES reports(report_id) ON DELETE CASCADE,
	gap_type    TEXT NOT NULL,
	criticality TEXT NOT NULL,
	n           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_gap_counts_report ON gap_counts(report_id);
`

// SQLiteStorage implements Storage on a local sqlite database.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path. WAL mode is
// enabled for concurrent readers.
func NewSQLite(path string) (*SQLiteStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveReport implements Storage.
func (s *SQLiteStorage) SaveReport(ctx context.Context, report *types.VoidReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
			(report_id, row_key, created_at, total_gaps, density, blocking, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		uuid.New().String(),
		report.CreatedAt.UTC(),
		report.Summary.TotalGaps,
		report.Summary.VoidDensity,
		report.Summary.BlockingCount,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM gap_counts WHERE report_id = ?`, report.ID); err != nil {
		return fmt.Errorf("failed to clear gap counts: %w", err)
	}

	counts := map[[2]string]int{}
	for i := range report.Gaps {
		counts[[2]string{string(report.Gaps[i].Type), string(report.Gaps[i].Criticality)}]++
	}
	for key, n := range counts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gap_counts (report_id, gap_type, criticality, n)
			VALUES (?, ?, ?, ?)`,
			report.ID, key[0], key[1], n); err != nil {
			return fmt.Errorf("failed to save gap counts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// GetReport implements Storage.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*types.VoidReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE report_id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report types.VoidReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &report, nil
}

// ListRuns implements Storage.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_id, created_at, total_gaps, density, blocking
		FROM reports
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var created time.Time
		if err := rows.Scan(&r.ReportID, &created, &r.TotalGaps, &r.VoidDensity, &r.Blocking); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = created.UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetPatternCounts implements Storage.
func (s *SQLiteStorage) GetPatternCounts(ctx context.Context) (*PatternCounts, error) {
	out := &PatternCounts{
		ByType:        map[types.GapType]int{},
		ByCriticality: map[types.Criticality]int{},
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports`).Scan(&out.Runs); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT gap_type, criticality, SUM(n)
		FROM gap_counts
		GROUP BY gap_type, criticality`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate gap counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gapType, criticality string
		var n int
		if err := rows.Scan(&gapType, &criticality, &n); err != nil {
			return nil, fmt.Errorf("failed to scan gap counts: %w", err)
		}
		out.ByType[types.GapType(gapType)] += n
		out.ByCriticality[types.Criticality(criticality)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gap counts: %w", err)
	}
	return out, nil
}

// Close implements Storage.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
