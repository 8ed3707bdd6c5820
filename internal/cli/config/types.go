// Package config provides configuration management for the csvtranspose CLI.
package config

import (
	"time"

	"github.com/leapstack-labs/csvtranspose/internal/csvio"
	"github.com/leapstack-labs/csvtranspose/internal/engine"
)

// Config holds all CLI configuration options.
type Config struct {
	Dir             string        `koanf:"dir" yaml:"dir"`
	Extension       string        `koanf:"extension" yaml:"extension"`
	Suffix          string        `koanf:"suffix" yaml:"suffix"`
	OutputDir       string        `koanf:"output_dir" yaml:"output_dir"`
	Delimiter       string        `koanf:"delimiter" yaml:"delimiter"`
	CRLF            bool          `koanf:"crlf" yaml:"crlf"`
	Encoding        string        `koanf:"encoding" yaml:"encoding"`
	Exclude         []string      `koanf:"exclude" yaml:"exclude"`
	Workers         int           `koanf:"workers" yaml:"workers"`
	ContinueOnError bool          `koanf:"continue_on_error" yaml:"continue_on_error"`
	Verbose         bool          `koanf:"verbose" yaml:"verbose"`
	OutputFormat    string        `koanf:"output" yaml:"output"`
	LogFormat       string        `koanf:"log_format" yaml:"log_format"`
	History         HistoryConfig `koanf:"history" yaml:"history"`
	Watch           WatchConfig   `koanf:"watch" yaml:"watch"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Path    string `koanf:"path" yaml:"path"`
	Limit   int    `koanf:"limit" yaml:"limit"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce" yaml:"debounce"`
}

// MarshalYAML writes the debounce as a duration string so the file can be
// loaded back.
func (w WatchConfig) MarshalYAML() (interface{}, error) {
	return map[string]string{"debounce": w.Debounce.String()}, nil
}

// Default configuration values
const (
	DefaultDir         = "."
	DefaultDelimiter   = ","
	DefaultHistoryPath = ".csvtranspose/history.db"
	DefaultHistoryList = 20
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogFormat   = "text"
	DefaultWorkers     = 1
)

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() *Config {
	return &Config{
		Dir:          DefaultDir,
		Extension:    engine.DefaultExtension,
		Suffix:       engine.DefaultSuffix,
		Delimiter:    DefaultDelimiter,
		CRLF:         true,
		Encoding:     csvio.DefaultEncoding,
		Exclude:      []string{},
		Workers:      DefaultWorkers,
		OutputFormat: DefaultOutput,
		LogFormat:    DefaultLogFormat,
		History: HistoryConfig{
			Path:  DefaultHistoryPath,
			Limit: DefaultHistoryList,
		},
		Watch: WatchConfig{Debounce: engine.DefaultDebounce},
	}
}

// defaultMap mirrors DefaultConfig as koanf keys.
func defaultMap() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"dir":               d.Dir,
		"extension":         d.Extension,
		"suffix":            d.Suffix,
		"output_dir":        d.OutputDir,
		"delimiter":         d.Delimiter,
		"crlf":              d.CRLF,
		"encoding":          d.Encoding,
		"exclude":           d.Exclude,
		"workers":           d.Workers,
		"continue_on_error": d.ContinueOnError,
		"verbose":           d.Verbose,
		"output":            d.OutputFormat,
		"log_format":        d.LogFormat,
		"history.enabled":   d.History.Enabled,
		"history.path":      d.History.Path,
		"history.limit":     d.History.Limit,
		"watch.debounce":    d.Watch.Debounce.String(),
	}
}

// Dialect returns the text format described by the delimiter, crlf and
// encoding settings.
func (c *Config) Dialect() (csvio.Dialect, error) {
	comma, err := csvio.ParseDelimiter(c.Delimiter)
	if err != nil {
		return csvio.Dialect{}, err
	}
	d := csvio.Dialect{Comma: comma, UseCRLF: c.CRLF, Encoding: c.Encoding}
	if err := d.Validate(); err != nil {
		return csvio.Dialect{}, err
	}
	return d, nil
}

// HistoryPath returns the history database location for a run over dir.
// Relative paths are resolved against dir.
func (c *Config) HistoryPath(dir string) string {
	path := c.History.Path
	if path == "" {
		path = DefaultHistoryPath
	}
	return resolvePathRelativeTo(path, dir)
}
