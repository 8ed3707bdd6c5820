package state

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordFile stores the outcome of one file for an existing run.
func (s *SQLiteStore) RecordFile(rec *FileRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO file_results
		 (run_id, input_path, output_path, row_count, col_count, dropped, status, error_kind, error, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.InputPath, rec.OutputPath, rec.Rows, rec.Cols, rec.Dropped,
		string(rec.Status), nullString(rec.ErrorKind), nullString(rec.Error),
		rec.DurationMS, formatTime(rec.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record file %s: %w", rec.InputPath, err)
	}
	return nil
}

// GetRunFiles returns the file outcomes of a run in the order they were recorded.
func (s *SQLiteStore) GetRunFiles(runID string) ([]*FileRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT run_id, input_path, output_path, row_count, col_count, dropped, status, error_kind, error, duration_ms, recorded_at
		 FROM file_results WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*FileRecord
	for rows.Next() {
		var (
			rec        FileRecord
			status     string
			errorKind  sql.NullString
			errMsg     sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&rec.RunID, &rec.InputPath, &rec.OutputPath, &rec.Rows, &rec.Cols,
			&rec.Dropped, &status, &errorKind, &errMsg, &rec.DurationMS, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		rec.Status = FileStatus(status)
		rec.ErrorKind = errorKind.String
		rec.Error = errMsg.String
		if rec.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("invalid recorded_at %q: %w", recordedAt, err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
