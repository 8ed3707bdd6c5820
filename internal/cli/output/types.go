package output

import "time"

// Shape is a table's dimensions.
type Shape struct {
	Rows    int `json:"rows"`
	MinCols int `json:"min_cols"`
	MaxCols int `json:"max_cols"`
}

// FileInfo is the JSON form of one processed file.
type FileInfo struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Status      string `json:"status"`
	InputShape  *Shape `json:"input_shape,omitempty"`
	OutputShape *Shape `json:"output_shape,omitempty"`
	Dropped     int    `json:"dropped_fields,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RunSummary holds totals for a run.
type RunSummary struct {
	Total      int   `json:"total"`
	Succeeded  int   `json:"succeeded"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// RunOutput is the JSON result of the run command.
type RunOutput struct {
	RunID   string     `json:"run_id"`
	Dir     string     `json:"dir"`
	Files   []FileInfo `json:"files"`
	Summary RunSummary `json:"summary"`
	Error   string     `json:"error,omitempty"`
}

// ListEntry is one candidate file and where its transpose would be written.
type ListEntry struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ListOutput is the JSON result of the list command.
type ListOutput struct {
	Dir   string      `json:"dir"`
	Files []ListEntry `json:"files"`
	Total int         `json:"total"`
}

// PreviewOutput is the JSON result of the preview command.
type PreviewOutput struct {
	File        string     `json:"file"`
	Output      string     `json:"output"`
	InputShape  Shape      `json:"input_shape"`
	OutputShape Shape      `json:"output_shape"`
	Dropped     int        `json:"dropped_fields"`
	Input       [][]string `json:"input"`
	Transposed  [][]string `json:"transposed"`
}

// RunInfo is the JSON form of a recorded run.
type RunInfo struct {
	ID          string     `json:"id"`
	Dir         string     `json:"dir"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FilesTotal  int        `json:"files_total"`
	FilesFailed int        `json:"files_failed"`
	Error       string     `json:"error,omitempty"`
}

// HistoryOutput is the JSON result of the history command.
type HistoryOutput struct {
	Runs []RunInfo `json:"runs"`
}

// RunDetailOutput is the JSON result of history for a single run.
type RunDetailOutput struct {
	Run   RunInfo    `json:"run"`
	Files []FileInfo `json:"files"`
}
