package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CreateRun inserts a new run in the running state.
func (s *SQLiteStore) CreateRun(run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunStatusRunning

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("dir", run.Dir))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, dir, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Dir, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a run finished with the given status and counts.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, total, failed int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errorVal sql.NullString
	if errMsg != "" {
		errorVal = sql.NullString{String: errMsg, Valid: true}
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, files_total = ?, files_failed = ?, error = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), total, failed, errorVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, dir, status, started_at, completed_at, files_total, files_failed, error
		 FROM runs WHERE id = ?`, id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 means no limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT id, dir, status, started_at, completed_at, files_total, files_failed, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		startedAt   string
		completedAt sql.NullString
		errMsg      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Dir, &status, &startedAt, &completedAt,
		&run.FilesTotal, &run.FilesFailed, &errMsg); err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	t, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t

	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completedAt.String, err)
		}
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return &run, nil
}
