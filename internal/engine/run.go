package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/csvtranspose/internal/state"
)

// RunResult summarizes a Run.
type RunResult struct {
	ID        string        `json:"id"`
	Dir       string        `json:"dir"`
	Files     []*FileResult `json:"files"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

func (r *RunResult) add(fr *FileResult) {
	r.Files = append(r.Files, fr)
	if fr.OK() {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// Run scans dir and transposes every selected file.
//
// By default the first failure aborts the run and later files are left
// untouched. With ContinueOnError every file is attempted and the failures
// are joined into the returned error. A non-nil RunResult is returned
// whenever the scan succeeded.
func (e *Engine) Run(ctx context.Context, dir string) (*RunResult, error) {
	res := &RunResult{
		ID:        uuid.NewString(),
		Dir:       dir,
		StartedAt: time.Now().UTC(),
	}
	logger := e.logger.With("run_id", res.ID)

	paths, err := e.Scan(dir)
	if err != nil {
		logger.Error("scan failed", "dir", dir, "error", err)
		return nil, err
	}
	logger.Debug("scan complete", "dir", dir, "files", len(paths))

	if e.store != nil {
		if err := e.store.CreateRun(&state.Run{ID: res.ID, Dir: dir, StartedAt: res.StartedAt}); err != nil {
			return nil, err
		}
	}

	var runErr error
	if e.workers > 1 && len(paths) > 1 {
		runErr = e.runParallel(ctx, res, paths)
	} else {
		runErr = e.runSequential(ctx, res, paths)
	}
	res.Duration = time.Since(res.StartedAt)

	e.completeRun(logger, res, runErr)
	return res, runErr
}

func (e *Engine) runSequential(ctx context.Context, res *RunResult, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		fr, err := e.TransposeFile(ctx, path)
		e.finishFile(res, fr)
		if err != nil {
			if !e.continueOnError {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) runParallel(ctx context.Context, res *RunResult, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, path := range paths {
		g.Go(func() error {
			// Files not yet started are skipped once a fail-fast error cancels the group.
			if gctx.Err() != nil {
				return nil
			}

			fr, err := e.TransposeFile(gctx, path)

			mu.Lock()
			e.finishFile(res, fr)
			if err != nil && e.continueOnError {
				errs = append(errs, err)
			}
			mu.Unlock()

			if err != nil && !e.continueOnError {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.sortFiles(res)
		return err
	}
	e.sortFiles(res)

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) sortFiles(res *RunResult) {
	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Input < res.Files[j].Input
	})
}

// finishFile records a file outcome. Callers serialize calls.
func (e *Engine) finishFile(res *RunResult, fr *FileResult) {
	res.add(fr)

	if !fr.OK() {
		e.logger.Error("transpose failed",
			"run_id", res.ID,
			"path", fr.Input,
			"kind", KindOf(fr.Err).String(),
			"error", fr.Err,
		)
	}

	if e.store != nil {
		if err := e.store.RecordFile(fileRecord(res.ID, fr)); err != nil {
			e.logger.Warn("failed to record file result", "run_id", res.ID, "path", fr.Input, "error", err)
		}
	}
	if e.onFile != nil {
		e.onFile(fr)
	}
}

func (e *Engine) completeRun(logger *slog.Logger, res *RunResult, runErr error) {
	status := state.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = state.RunStatusFailed
		errMsg = runErr.Error()
	}

	logger.Info("run finished",
		"dir", res.Dir,
		"status", string(status),
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"duration", res.Duration.Round(time.Millisecond),
	)

	if e.store == nil {
		return
	}
	if err := e.store.CompleteRun(res.ID, status, len(res.Files), res.Failed, errMsg); err != nil {
		logger.Warn("failed to complete run record", "error", err)
	}
}

func fileRecord(runID string, fr *FileResult) *state.FileRecord {
	rec := &state.FileRecord{
		RunID:      runID,
		InputPath:  fr.Input,
		OutputPath: fr.Output,
		Rows:       fr.InputShape.Rows,
		Cols:       fr.InputShape.MinCols,
		Dropped:    fr.Dropped,
		Status:     state.FileStatusSuccess,
		DurationMS: fr.Duration.Milliseconds(),
	}
	if fr.Err != nil {
		rec.Status = state.FileStatusFailed
		rec.ErrorKind = KindOf(fr.Err).String()
		rec.Error = fr.Err.Error()
	}
	return rec
}
