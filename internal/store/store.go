// Package store keeps a history of finished scheduling runs in SQLite.
// Only reports are stored; queue state is never persisted.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"prioq/internal/sched"
)

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored scheduling run.
type Run struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Source     string           `json:"source"` // workload file, "api", ...
	Statistics sched.Statistics `json:"statistics"`
	Results    []sched.Result   `json:"results,omitempty"`
}

// DB wraps a SQLite connection holding run history.
type DB struct {
	db *sql.DB
}

// Open creates or opens the history database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                   TEXT PRIMARY KEY,
			created_at           INTEGER NOT NULL,
			source               TEXT NOT NULL DEFAULT '',
			total_tasks          INTEGER NOT NULL,
			completed_tasks      INTEGER NOT NULL,
			deadline_met         INTEGER NOT NULL,
			deadline_missed      INTEGER NOT NULL,
			total_execution_time REAL NOT NULL,
			average_wait_time    REAL NOT NULL,
			throughput           REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq             INTEGER NOT NULL,
			task_id         TEXT NOT NULL,
			start_time      REAL NOT NULL,
			completion_time REAL NOT NULL,
			wait_time       REAL NOT NULL,
			deadline_met    BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	}
	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a run and its results atomically. A missing ID or
// CreatedAt is filled in; the stored run is returned.
func (d *DB) SaveRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return run, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	st := run.Statistics
	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, created_at, source, total_tasks, completed_tasks, deadline_met,
		 deadline_missed, total_execution_time, average_wait_time, throughput)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Source, st.TotalTasks, st.CompletedTasks,
		st.DeadlineMet, st.DeadlineMissed, st.TotalExecutionTime, st.AverageWaitTime, st.Throughput)
	if err != nil {
		return run, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, seq, task_id, start_time, completion_time, wait_time, deadline_met)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return run, fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.TaskID, r.StartTime,
			r.CompletionTime, r.WaitTime, r.DeadlineMet); err != nil {
			return run, fmt.Errorf("insert result %s: %w", r.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// GetRun returns a run with its results in execution order.
func (d *DB) GetRun(ctx context.Context, id string) (Run, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return run, ErrRunNotFound
	}
	if err != nil {
		return run, fmt.Errorf("get run: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `SELECT task_id, start_time, completion_time, wait_time, deadline_met
		FROM results WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return run, fmt.Errorf("get results: %w", err)
	}
	defer rows.Close()

	run.Results = []sched.Result{}
	for rows.Next() {
		var r sched.Result
		if err := rows.Scan(&r.TaskID, &r.StartTime, &r.CompletionTime, &r.WaitTime, &r.DeadlineMet); err != nil {
			return run, fmt.Errorf("scan result: %w", err)
		}
		run.Results = append(run.Results, r)
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs first, without their results.
// limit <= 0 means no limit.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs
		ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const runColumns = `id, created_at, source, total_tasks, completed_tasks, deadline_met,
	deadline_missed, total_execution_time, average_wait_time, throughput`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run     Run
		created int64
	)
	st := &run.Statistics
	err := s.Scan(&run.ID, &created, &run.Source, &st.TotalTasks, &st.CompletedTasks,
		&st.DeadlineMet, &st.DeadlineMissed, &st.TotalExecutionTime, &st.AverageWaitTime, &st.Throughput)
	if err != nil {
		return run, err
	}
	run.CreatedAt = time.Unix(0, created)
	return run, nil
}
