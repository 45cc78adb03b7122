// Package db implements the sqlite-backed run history.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	argv        TEXT NOT NULL,
	manager     TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// DB wraps the history database connection.
type DB struct {
	conn *sql.DB
}

// Run is one recorded delegated command.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	Command   string        `json:"command" yaml:"command"`
	Argv      []string      `json:"argv" yaml:"argv"`
	Manager   string        `json:"manager,omitempty" yaml:"manager,omitempty"`
	ExitCode  int           `json:"exit_code" yaml:"exit_code"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Open opens (and migrates) the history database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// RecordRun inserts a completed run, assigning an ID when absent.
func (d *DB) RecordRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	argvJSON, err := json.Marshal(run.Argv)
	if err != nil {
		return fmt.Errorf("encoding argv: %w", err)
	}

	_, err = d.conn.Exec(
		`INSERT INTO runs (id, command, argv, manager, exit_code, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, string(argvJSON), run.Manager,
		run.ExitCode, run.StartedAt.UTC(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// ListRuns returns runs newest first. limit <= 0 means no limit.
func (d *DB) ListRuns(limit, offset int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(
		`SELECT id, command, argv, manager, exit_code, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// SearchRuns returns runs whose command contains query, newest first.
func (d *DB) SearchRuns(query string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(
		`SELECT id, command, argv, manager, exit_code, started_at, duration_ms
		 FROM runs WHERE command LIKE ? ORDER BY started_at DESC, id LIMIT ?`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// CountRuns returns the total number of recorded runs.
func (d *DB) CountRuns() (int, error) {
	var count int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return count, nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		var (
			run        Run
			argvJSON   string
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID, &run.Command, &argvJSON, &run.Manager,
			&run.ExitCode, &run.StartedAt, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(argvJSON), &run.Argv); err != nil {
			return nil, fmt.Errorf("decoding argv: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
