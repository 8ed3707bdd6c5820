package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item for a labelled value.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}

// Table writes header and rows as a box drawn table in text mode and as a
// markdown table otherwise.
func (r *Renderer) Table(header []string, rows [][]string) {
	writeTable(r.out, header, rows, r.EffectiveMode() == ModeMarkdown)
}

func writeTable(w io.Writer, header []string, rows [][]string, markdown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	if len(header) > 0 {
		t.AppendHeader(toRow(header))
	}
	for _, row := range rows {
		t.AppendRow(toRow(row))
	}

	if markdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

func toRow(fields []string) table.Row {
	row := make(table.Row, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return row
}
