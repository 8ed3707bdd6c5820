// Package engine discovers delimited text files in a directory and writes a
// transposed copy of each.
package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/csvtranspose/internal/csvio"
	"github.com/leapstack-labs/csvtranspose/internal/state"
)

// Engine transposes files according to its Config.
type Engine struct {
	ext             string
	suffix          string
	outputDir       string
	exclude         []string
	dialect         csvio.Dialect
	workers         int
	continueOnError bool

	store  state.Store
	onFile func(*FileResult)

	// Structured logger
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Extension selects input files by name suffix. Default ".csv".
	Extension string
	// Suffix is inserted before the extension of output names. Default "_transposed".
	Suffix string
	// OutputDir receives output files. Empty means next to each input.
	OutputDir string
	// Exclude holds filepath.Match patterns for names to skip.
	Exclude []string
	// Dialect is used for both reading and writing.
	Dialect csvio.Dialect
	// Workers bounds how many files are processed at once. Values below 2
	// process files one after another.
	Workers int
	// ContinueOnError keeps going after a file fails instead of aborting the run.
	ContinueOnError bool
	// Store records run history (optional).
	Store state.Store
	// OnFile is called after each file is processed, successful or not.
	// Calls never overlap.
	OnFile func(*FileResult)
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine, applying defaults for unset fields.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	suffix := cfg.Suffix
	if suffix == "" && cfg.OutputDir == "" {
		suffix = DefaultSuffix
	}

	dialect := cfg.Dialect
	if dialect.Comma == 0 {
		dialect.Comma = ','
	}
	if err := dialect.Validate(); err != nil {
		return nil, err
	}

	for _, pattern := range cfg.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	logger.Debug("initializing engine",
		"extension", ext,
		"suffix", suffix,
		"output_dir", cfg.OutputDir,
		"workers", workers,
		"continue_on_error", cfg.ContinueOnError,
	)

	return &Engine{
		ext:             ext,
		suffix:          suffix,
		outputDir:       cfg.OutputDir,
		exclude:         cfg.Exclude,
		dialect:         dialect,
		workers:         workers,
		continueOnError: cfg.ContinueOnError,
		store:           cfg.Store,
		onFile:          cfg.OnFile,
		logger:          logger,
	}, nil
}

// ScanOptions returns the scanner settings derived from the engine config.
func (e *Engine) ScanOptions() ScanOptions {
	return ScanOptions{Extension: e.ext, Exclude: e.exclude}
}

// Scan lists the files a Run over dir would process.
func (e *Engine) Scan(dir string) ([]string, error) {
	return Scan(dir, e.ScanOptions())
}

// OutputPath returns where the transpose of input is written.
func (e *Engine) OutputPath(input string) string {
	return OutputPath(input, e.suffix, e.outputDir)
}

// Dialect returns the text format used for reading and writing.
func (e *Engine) Dialect() csvio.Dialect {
	return e.dialect
}
