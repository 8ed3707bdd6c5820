// Package table provides the in-memory representation of delimited text
// content and the transpose operation over it.
package table

// Table is an ordered sequence of rows, each an ordered sequence of text fields.
type Table [][]string

// Shape describes the dimensions of a table.
type Shape struct {
	Rows int `json:"rows"`
	// MinCols and MaxCols differ only for ragged tables.
	MinCols int `json:"min_cols"`
	MaxCols int `json:"max_cols"`
}

// Ragged reports whether rows have different field counts.
func (s Shape) Ragged() bool {
	return s.MinCols != s.MaxCols
}

// Shape returns the dimensions of t. An empty table has a zero Shape.
func (t Table) Shape() Shape {
	if len(t) == 0 {
		return Shape{}
	}
	s := Shape{Rows: len(t), MinCols: len(t[0]), MaxCols: len(t[0])}
	for _, row := range t[1:] {
		if len(row) < s.MinCols {
			s.MinCols = len(row)
		}
		if len(row) > s.MaxCols {
			s.MaxCols = len(row)
		}
	}
	return s
}

// Width returns the number of columns that survive a transpose, which is the
// length of the shortest row.
func (t Table) Width() int {
	return t.Shape().MinCols
}

// Dropped returns how many fields a transpose of t discards because they sit
// beyond the shortest row.
func (t Table) Dropped() int {
	width := t.Width()
	n := 0
	for _, row := range t {
		n += len(row) - width
	}
	return n
}

// Transpose maps field (i, j) to (j, i).
//
// Rows are paired positionally: output row j exists only if every input row
// has a field at column j. Longer rows of a ragged table lose their extra
// fields rather than the short rows being padded.
func Transpose(t Table) Table {
	width := t.Width()
	out := make(Table, width)
	for j := 0; j < width; j++ {
		row := make([]string, len(t))
		for i := range t {
			row[i] = t[i][j]
		}
		out[j] = row
	}
	return out
}

// Equal reports whether a and b hold the same fields in the same positions.
func Equal(a, b Table) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
