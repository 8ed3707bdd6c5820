package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvtranspose/internal/cli/output"
	"github.com/leapstack-labs/csvtranspose/internal/table"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	MaxRows int
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show a file and its transpose without writing anything",
		Long: `Parse one file with the configured delimiter and encoding and show the table
next to its transpose. Nothing is written.

Use --output to override: auto, text, markdown, json`,
		Example: `  # Preview a file
  csvtranspose preview data.csv

  # Preview only the first 5 rows of each table
  csvtranspose preview data.csv --max-rows 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", 20, "Maximum rows shown per table (0 shows all)")

	return cmd
}

func runPreview(cmd *cobra.Command, path string, opts *PreviewOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	eng, err := createEngine(cmdCtx.Cfg, nil, nil, cmdCtx.Logger)
	if err != nil {
		return err
	}

	in, err := eng.ReadTable(path)
	if err != nil {
		return err
	}
	out := table.Transpose(in)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.PreviewOutput{
			File:        path,
			Output:      eng.OutputPath(path),
			InputShape:  shapeInfo(in.Shape()),
			OutputShape: shapeInfo(out.Shape()),
			Dropped:     in.Dropped(),
			Input:       in,
			Transposed:  out,
		})
	}

	previewTable(r, fmt.Sprintf("%s (%s)", path, shapeString(in.Shape())), in, opts.MaxRows)
	r.Println("")
	previewTable(r, fmt.Sprintf("Transposed (%s)", shapeString(out.Shape())), out, opts.MaxRows)

	if dropped := in.Dropped(); dropped > 0 {
		r.Warning(fmt.Sprintf("%d %s beyond the shortest row would be dropped", dropped, plural(dropped, "field", "fields")))
	}
	return nil
}

func previewTable(r *output.Renderer, title string, t table.Table, maxRows int) {
	r.Header(2, title)

	if len(t) == 0 {
		r.Muted("(empty)")
		return
	}

	rows := t
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	r.Table(nil, rows)

	if len(rows) < len(t) {
		r.Muted(fmt.Sprintf("... %d more rows", len(t)-len(rows)))
	}
}
