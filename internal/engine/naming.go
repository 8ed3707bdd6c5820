package engine

import (
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to the base name of every output file.
const DefaultSuffix = "_transposed"

// OutputPath derives where the transpose of input is written: the input's
// base name without extension, then suffix, then the original extension.
// The file lands next to the input unless outDir is set.
//
//	OutputPath("in/data.csv", "_transposed", "") == "in/data_transposed.csv"
func OutputPath(input, suffix, outDir string) string {
	stem, ext := splitExt(filepath.Base(input))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem+suffix+ext)
}

// IsOutputName reports whether name looks like a file OutputPath produced.
func IsOutputName(name, suffix string) bool {
	if suffix == "" {
		return false
	}
	stem, _ := splitExt(filepath.Base(name))
	return strings.HasSuffix(stem, suffix)
}

// splitExt splits off the extension after the last dot. Leading dots belong to
// the name, so ".csv" has no extension.
func splitExt(base string) (stem, ext string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || strings.Trim(base[:i], ".") == "" {
		return base, ""
	}
	return base[:i], base[i:]
}
