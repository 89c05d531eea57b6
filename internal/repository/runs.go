package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrRunNotFound = errors.New("allocation run not found")

type Status string

const (
	StatusInProgress Status = "in progress"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Run is one stored allocation run. Data holds the allocation CSV and Report
// the textual summary.
type Run struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	Outcome      string    `json:"outcome"`
	StuckStudent string    `json:"stuckStudent"`
	Data         string    `json:"data,omitempty"`
	Report       string    `json:"report,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS allocation_run (
	id            TEXT PRIMARY KEY,
	status        TEXT NOT NULL,
	outcome       TEXT NOT NULL DEFAULT '',
	stuck_student TEXT NOT NULL DEFAULT '',
	data          TEXT NOT NULL DEFAULT '',
	report        TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);`

type RunRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*RunRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Runs finish on their own goroutines; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return NewRunRepository(db)
}

func NewRunRepository(db *sql.DB) (*RunRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate allocation_run: %w", err)
	}
	return &RunRepository{db: db}, nil
}

func (r *RunRepository) Close() error {
	return r.db.Close()
}

// Create stores a new in-progress run and returns it.
func (r *RunRepository) Create(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Status:    StatusInProgress,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO allocation_run (id, status, created_at) VALUES (?, ?, ?)",
		run.ID, run.Status, run.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish records the result of an allocation that ran to an outcome.
func (r *RunRepository) Finish(ctx context.Context, id, outcome, stuckStudent, data, report string) error {
	return r.update(ctx, id, StatusSuccess, outcome, stuckStudent, data, report)
}

// Fail records a run that could not execute, e.g. because of malformed input.
func (r *RunRepository) Fail(ctx context.Context, id, report string) error {
	return r.update(ctx, id, StatusFailed, "", "", "", report)
}

func (r *RunRepository) update(ctx context.Context, id string, status Status, outcome, stuckStudent, data, report string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE allocation_run SET status = ?, outcome = ?, stuck_student = ?, data = ?, report = ? WHERE id = ?",
		status, outcome, stuckStudent, data, report, id)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	return expectRow(res, id)
}

// Get returns the run including its data and report.
func (r *RunRepository) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, status, outcome, stuck_student, data, report, created_at FROM allocation_run WHERE id = ?", id)
	run := &Run{}
	var created int64
	err := row.Scan(&run.ID, &run.Status, &run.Outcome, &run.StuckStudent, &run.Data, &run.Report, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run %s: %w", id, err)
	}
	run.CreatedAt = time.Unix(created, 0).UTC()
	return run, nil
}

// List returns every run, newest first, without data or report.
func (r *RunRepository) List(ctx context.Context) ([]*Run, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, status, outcome, stuck_student, created_at FROM allocation_run ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		var created int64
		if err := rows.Scan(&run.ID, &run.Status, &run.Outcome, &run.StuckStudent, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(created, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM allocation_run WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return expectRow(res, id)
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
