package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/csvtranspose/internal/csvio"
	"github.com/leapstack-labs/csvtranspose/internal/table"
)

// FileResult describes what happened to one input file.
type FileResult struct {
	Input       string        `json:"input"`
	Output      string        `json:"output"`
	InputShape  table.Shape   `json:"input_shape"`
	OutputShape table.Shape   `json:"output_shape"`
	Dropped     int           `json:"dropped_fields"`
	Duration    time.Duration `json:"duration_ns"`
	Err         error         `json:"-"`
}

// OK reports whether the file was transposed.
func (r *FileResult) OK() bool {
	return r.Err == nil
}

// ReadTable loads and parses one input file.
func (e *Engine) ReadTable(path string) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindFileRead, Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	tbl, err := csvio.ReadTable(f, e.dialect)
	if err != nil {
		var perr *csvio.ParseError
		if errors.As(err, &perr) {
			return nil, &Error{Kind: KindParse, Path: path, Err: err}
		}
		return nil, &Error{Kind: KindFileRead, Path: path, Err: err}
	}
	return tbl, nil
}

// TransposeFile reads input fully, transposes it and writes the result to
// OutputPath(input), replacing any existing file. The returned result is never
// nil, and its Err matches the returned error.
func (e *Engine) TransposeFile(ctx context.Context, input string) (*FileResult, error) {
	start := time.Now()
	res := &FileResult{Input: input, Output: e.OutputPath(input)}

	fail := func(err error) (*FileResult, error) {
		res.Err = err
		res.Duration = time.Since(start)
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if sameFile(input, res.Output) {
		return fail(&Error{Kind: KindFileWrite, Path: res.Output, Err: errors.New("output would overwrite input")})
	}

	tbl, err := e.ReadTable(input)
	if err != nil {
		return fail(err)
	}
	res.InputShape = tbl.Shape()

	if dropped := tbl.Dropped(); dropped > 0 {
		res.Dropped = dropped
		e.logger.Warn("ragged rows truncated to shortest row",
			"path", input,
			"min_cols", res.InputShape.MinCols,
			"max_cols", res.InputShape.MaxCols,
			"dropped_fields", dropped,
		)
	}

	out := table.Transpose(tbl)
	res.OutputShape = out.Shape()

	if err := e.writeTable(res.Output, out); err != nil {
		return fail(err)
	}

	res.Duration = time.Since(start)
	e.logger.Info("transposed",
		"input", input,
		"output", res.Output,
		"rows", res.InputShape.Rows,
		"cols", res.InputShape.MinCols,
	)
	return res, nil
}

func (e *Engine) writeTable(path string, t table.Table) (err error) {
	if e.outputDir != "" {
		if err := os.MkdirAll(e.outputDir, 0o750); err != nil {
			return &Error{Kind: KindFileWrite, Path: e.outputDir, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &Error{Kind: KindFileWrite, Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &Error{Kind: KindFileWrite, Path: path, Err: cerr}
		}
	}()

	if err := csvio.WriteTable(f, t, e.dialect); err != nil {
		return &Error{Kind: KindFileWrite, Path: path, Err: fmt.Errorf("write: %w", err)}
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
