package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Run is one recorded simulation run.
type Run struct {
	ID         int64
	Scenario   string
	TraceDir   string
	SeedPolicy string
	StartedAt  time.Time
	Duration   time.Duration
	ExitCode   int
	Passed     bool
}

// ResultStore records simulation runs in a SQLite database.
type ResultStore struct {
	db   *sql.DB
	path string
}

// Open opens (and if needed creates) the results database at dbPath,
// creating the parent directory when absent.
func Open(dbPath string) (*ResultStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &ResultStore{db: db, path: dbPath}, nil
}

// RecordRun inserts a run and returns its assigned ID.
func (s *ResultStore) RecordRun(ctx context.Context, r Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (scenario, trace_dir, seed_policy, started_at, duration_ms, exit_code, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Scenario, r.TraceDir, r.SeedPolicy,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.Duration.Milliseconds(), r.ExitCode, boolToInt(r.Passed))
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// ListRuns returns recorded runs, newest first. When failedOnly is set, only
// runs that did not pass are returned.
func (s *ResultStore) ListRuns(ctx context.Context, failedOnly bool) ([]Run, error) {
	query := `
		SELECT id, scenario, trace_dir, seed_policy, started_at, duration_ms, exit_code, passed
		FROM runs`
	if failedOnly {
		query += ` WHERE passed = 0`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var durationMS int64
		var passed int
		if err := rows.Scan(&r.ID, &r.Scenario, &r.TraceDir, &r.SeedPolicy,
			&started, &durationMS, &r.ExitCode, &passed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Passed = passed != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
