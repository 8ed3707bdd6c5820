package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvtranspose/internal/cli/output"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the files a run would transpose",
		Long: `List every file in dir that a run would transpose, together with the path its
result would be written to. Nothing is read or written.

Use --output to override: auto, text, markdown, json`,
		Example: `  # List candidates in the current directory
  csvtranspose list

  # List tab separated candidates as JSON
  csvtranspose list ./exports --ext .tsv --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	dir := resolveDir(cfg, args)

	cmdCtx := NewCommandContextWithoutEngine(cmd)
	eng, err := createEngine(cfg, nil, nil, cmdCtx.Logger)
	if err != nil {
		return err
	}

	paths, err := eng.Scan(dir)
	if err != nil {
		return err
	}

	entries := make([]output.ListEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, output.ListEntry{Input: p, Output: eng.OutputPath(p)})
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.ListOutput{Dir: dir, Files: entries, Total: len(entries)})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Files (%d total)", len(entries))))
		r.Println("")
	default:
		r.Header(1, fmt.Sprintf("Files (%d total)", len(entries)))
	}

	if len(entries) == 0 {
		r.Muted(fmt.Sprintf("No *%s files found in %s", cfg.Extension, dir))
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Input, e.Output})
	}
	r.Table([]string{"Input", "Output"}, rows)
	return nil
}
