package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvtranspose/internal/cli/output"
	"github.com/leapstack-labs/csvtranspose/internal/engine"
	"github.com/leapstack-labs/csvtranspose/internal/table"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Transpose every matching file in a directory",
		Long: `Transpose the rows and columns of every file in dir whose name ends with the
configured extension (default .csv). Each result is written next to its input
as <name>_transposed<ext>, replacing any previous result.

Only the directory itself is scanned, not its subdirectories. The run stops at
the first file that cannot be read, parsed or written unless
--continue-on-error is set.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Transpose all CSV files in the current directory
  csvtranspose run

  # Transpose semicolon separated files in ./exports
  csvtranspose run ./exports --delimiter ';'

  # Write results to a separate directory, four files at a time
  csvtranspose run ./exports --output-dir ./flipped --workers 4

  # Record the run in the history database and report as JSON
  csvtranspose run --record --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTranspose(cmd, args)
		},
	}

	return cmd
}

// RunTranspose transposes the directory named by args (or the configured one)
// and reports the result. It backs both run and the root command.
func RunTranspose(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	dir := resolveDir(cfg, args)

	// Text mode reports files as they finish.
	var r *output.Renderer
	onFile := func(fr *engine.FileResult) {
		if r.EffectiveMode() == output.ModeText {
			fileStatusLine(r, fr)
		}
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, dir, onFile)
	if err != nil {
		return err
	}
	defer cleanup()

	r = cmdCtx.Renderer
	effectiveMode := r.EffectiveMode()
	if effectiveMode == output.ModeText {
		r.Header(1, fmt.Sprintf("Transposing %s", dir))
	}

	res, runErr := cmdCtx.Engine.Run(cmd.Context(), dir)
	if res == nil {
		return runErr
	}

	switch effectiveMode {
	case output.ModeJSON:
		if err := r.JSON(runOutput(res, runErr)); err != nil {
			return err
		}
	case output.ModeMarkdown:
		runMarkdown(r, cmdCtx.Engine, res)
	default:
		runText(r, cmdCtx.Engine, res)
	}

	if cmdCtx.Store != nil {
		cmdCtx.Logger.Debug("run recorded", "run_id", res.ID, "history", cfg.HistoryPath(dir))
	}
	return runErr
}

// runText prints the summary after per-file lines were streamed.
func runText(r *output.Renderer, eng *engine.Engine, res *engine.RunResult) {
	if len(res.Files) == 0 {
		r.Muted(fmt.Sprintf("No *%s files found in %s", eng.ScanOptions().Extension, res.Dir))
		return
	}

	r.Println()
	elapsed := res.Duration.Round(time.Millisecond)
	if res.Failed == 0 {
		r.Success(fmt.Sprintf("Transposed %d %s in %s", res.Succeeded, plural(res.Succeeded, "file", "files"), elapsed))
		return
	}
	r.Error(fmt.Sprintf("%d of %d %s failed", res.Failed, len(res.Files), plural(len(res.Files), "file", "files")))
}

// runMarkdown outputs the run as a markdown report.
func runMarkdown(r *output.Renderer, eng *engine.Engine, res *engine.RunResult) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Transpose %s", res.Dir)))
	r.Println("")

	if len(res.Files) == 0 {
		r.Println(fmt.Sprintf("No *%s files found.", eng.ScanOptions().Extension))
		return
	}

	rows := make([][]string, 0, len(res.Files))
	for _, fr := range res.Files {
		status := "success"
		detail := fmt.Sprintf("%s -> %s", shapeString(fr.InputShape), shapeString(fr.OutputShape))
		if !fr.OK() {
			status = "failed"
			detail = fr.Err.Error()
		}
		rows = append(rows, []string{fr.Input, fr.Output, status, detail})
	}
	r.Table([]string{"Input", "Output", "Status", "Detail"}, rows)
	r.Println("")

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Run ID", res.ID))
	r.Println(output.FormatKeyValue("Succeeded", fmt.Sprintf("%d", res.Succeeded)))
	r.Println(output.FormatKeyValue("Failed", fmt.Sprintf("%d", res.Failed)))
	r.Println(output.FormatKeyValue("Duration", res.Duration.Round(time.Millisecond).String()))
}

func fileStatusLine(r *output.Renderer, fr *engine.FileResult) {
	if !fr.OK() {
		r.StatusLine(fr.Input, "failed", fr.Err.Error())
		return
	}
	detail := fmt.Sprintf("-> %s (%s)", filepath.Base(fr.Output), shapeString(fr.OutputShape))
	if fr.Dropped > 0 {
		detail += fmt.Sprintf(", %d ragged %s dropped", fr.Dropped, plural(fr.Dropped, "field", "fields"))
	}
	r.StatusLine(fr.Input, "success", detail)
}

func runOutput(res *engine.RunResult, runErr error) output.RunOutput {
	out := output.RunOutput{
		RunID: res.ID,
		Dir:   res.Dir,
		Files: make([]output.FileInfo, 0, len(res.Files)),
		Summary: output.RunSummary{
			Total:      len(res.Files),
			Succeeded:  res.Succeeded,
			Failed:     res.Failed,
			DurationMS: res.Duration.Milliseconds(),
		},
	}
	for _, fr := range res.Files {
		out.Files = append(out.Files, fileInfo(fr))
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	return out
}

func fileInfo(fr *engine.FileResult) output.FileInfo {
	info := output.FileInfo{
		Input:      fr.Input,
		Output:     fr.Output,
		Status:     "success",
		Dropped:    fr.Dropped,
		DurationMS: fr.Duration.Milliseconds(),
	}
	if fr.OK() {
		in, out := shapeInfo(fr.InputShape), shapeInfo(fr.OutputShape)
		info.InputShape, info.OutputShape = &in, &out
		return info
	}
	info.Status = "failed"
	info.ErrorKind = engine.KindOf(fr.Err).String()
	info.Error = fr.Err.Error()
	return info
}

func shapeInfo(s table.Shape) output.Shape {
	return output.Shape{Rows: s.Rows, MinCols: s.MinCols, MaxCols: s.MaxCols}
}

func shapeString(s table.Shape) string {
	if s.Ragged() {
		return fmt.Sprintf("%dx%d..%d", s.Rows, s.MinCols, s.MaxCols)
	}
	return fmt.Sprintf("%dx%d", s.Rows, s.MinCols)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
