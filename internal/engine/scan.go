package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtension selects which directory entries are transposed.
const DefaultExtension = ".csv"

// ScanOptions controls which entries Scan selects.
type ScanOptions struct {
	// Extension is the required name suffix. Default is ".csv".
	Extension string
	// Exclude holds filepath.Match patterns tested against entry names.
	Exclude []string
}

// Scan lists the files directly inside dir whose name ends with the configured
// extension. Subdirectories are not entered and an empty result is not an
// error.
func Scan(dir string, opts ScanOptions) ([]string, error) {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{Kind: KindFilesystemAccess, Path: dir, Err: err}
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		excluded, err := matchAny(opts.Exclude, name)
		if err != nil {
			return nil, err
		}
		if excluded {
			continue
		}

		path := filepath.Join(dir, name)
		if isDir(entry, path) {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
