// Package state records transpose runs and their per-file results in a
// SQLite database so earlier runs can be inspected later.
package state

import "time"

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// FileStatus is the outcome of transposing one file.
type FileStatus string

// File statuses.
const (
	FileStatusSuccess FileStatus = "success"
	FileStatusFailed  FileStatus = "failed"
)

// Run is one invocation over a directory.
type Run struct {
	ID          string     `json:"id"`
	Dir         string     `json:"dir"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FilesTotal  int        `json:"files_total"`
	FilesFailed int        `json:"files_failed"`
	Error       string     `json:"error,omitempty"`
}

// FileRecord is the stored outcome for one input file of a run.
type FileRecord struct {
	RunID      string     `json:"run_id"`
	InputPath  string     `json:"input_path"`
	OutputPath string     `json:"output_path"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	Dropped    int        `json:"dropped"`
	Status     FileStatus `json:"status"`
	ErrorKind  string     `json:"error_kind,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMS int64      `json:"duration_ms"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// Store persists run history.
type Store interface {
	// CreateRun inserts run with status running. run.ID must be set.
	CreateRun(run *Run) error
	// RecordFile appends a file outcome to an existing run.
	RecordFile(rec *FileRecord) error
	// CompleteRun sets the final status and counts of a run.
	CompleteRun(id string, status RunStatus, total, failed int, errMsg string) error
	// GetRun returns a run by ID.
	GetRun(id string) (*Run, error)
	// ListRuns returns the most recent runs first, at most limit of them.
	ListRuns(limit int) ([]*Run, error)
	// GetRunFiles returns the file outcomes of a run in recording order.
	GetRunFiles(runID string) ([]*FileRecord, error)
	Close() error
}
