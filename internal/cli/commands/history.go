package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvtranspose/internal/cli/output"
	"github.com/leapstack-labs/csvtranspose/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded with --record, newest first. With a run ID, show the
files processed by that run and their outcome.

The history database is read from history.path, resolved against --dir
(default: the configured directory).`,
		Example: `  # Show the last 20 runs
  csvtranspose history

  # Show the files of one run as JSON
  csvtranspose history 0b6f... --output json

  # Show history recorded for another directory
  csvtranspose history --dir ./exports --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args)
		},
	}

	cmd.Flags().String("dir", "", "Directory whose history is shown")
	cmd.Flags().Int("limit", 0, "Maximum number of runs to list (default from history.limit)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	dir := resolveDir(cfg, nil)
	if v, _ := cmd.Flags().GetString("dir"); v != "" {
		dir = v
	}
	path := cfg.HistoryPath(dir)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(output.HistoryOutput{Runs: []output.RunInfo{}})
		}
		r.Muted(fmt.Sprintf("No history recorded at %s (enable with --record)", path))
		return nil
	}

	store, err := openHistory(path, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if len(args) == 1 {
		return showRun(r, store, args[0])
	}

	limit := cfg.History.Limit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	return listRuns(r, store, limit)
}

func listRuns(r *output.Renderer, store state.Store, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	infos := make([]output.RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, runInfo(run))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.HistoryOutput{Runs: infos})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Runs (%d shown)", len(infos))))
		r.Println("")
	default:
		r.Header(1, fmt.Sprintf("Runs (%d shown)", len(infos)))
	}

	if len(infos) == 0 {
		r.Muted("No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, run := range infos {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			fmt.Sprintf("%d", run.FilesTotal),
			fmt.Sprintf("%d", run.FilesFailed),
			run.Dir,
		})
	}
	r.Table([]string{"Run ID", "Started", "Status", "Files", "Failed", "Dir"}, rows)
	return nil
}

func showRun(r *output.Renderer, store state.Store, id string) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	files, err := store.GetRunFiles(id)
	if err != nil {
		return fmt.Errorf("failed to get files for run %s: %w", id, err)
	}

	detail := output.RunDetailOutput{Run: runInfo(run), Files: make([]output.FileInfo, 0, len(files))}
	for _, f := range files {
		detail.Files = append(detail.Files, recordInfo(f))
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(detail)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Run "+run.ID))
		r.Println("")
	} else {
		r.Header(1, "Run "+run.ID)
	}
	r.Println(output.FormatKeyValue("Dir", run.Dir))
	r.Println(output.FormatKeyValue("Status", string(run.Status)))
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
	if run.CompletedAt != nil {
		r.Println(output.FormatKeyValue("Duration", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()))
	}
	if run.Error != "" {
		r.Println(output.FormatKeyValue("Error", run.Error))
	}
	r.Println("")

	rows := make([][]string, 0, len(detail.Files))
	for _, f := range detail.Files {
		msg := f.Error
		if msg == "" && f.InputShape != nil {
			msg = fmt.Sprintf("%dx%d", f.InputShape.Rows, f.InputShape.MinCols)
		}
		rows = append(rows, []string{f.Input, f.Output, f.Status, msg})
	}
	r.Table([]string{"Input", "Output", "Status", "Detail"}, rows)
	return nil
}

func runInfo(run *state.Run) output.RunInfo {
	return output.RunInfo{
		ID:          run.ID,
		Dir:         run.Dir,
		Status:      string(run.Status),
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		FilesTotal:  run.FilesTotal,
		FilesFailed: run.FilesFailed,
		Error:       run.Error,
	}
}

func recordInfo(f *state.FileRecord) output.FileInfo {
	info := output.FileInfo{
		Input:      f.InputPath,
		Output:     f.OutputPath,
		Status:     string(f.Status),
		Dropped:    f.Dropped,
		DurationMS: f.DurationMS,
		ErrorKind:  f.ErrorKind,
		Error:      f.Error,
	}
	if f.Status == state.FileStatusSuccess {
		info.InputShape = &output.Shape{Rows: f.Rows, MinCols: f.Cols, MaxCols: f.Cols}
	}
	return info
}
