package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// OutputModes lists the accepted values of the output setting.
var OutputModes = []string{"auto", "text", "markdown", "json"}

// LogFormats lists the accepted values of the log_format setting.
var LogFormats = []string{"text", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Dialect(); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.Extension) == "" {
		errs = append(errs, errors.New("extension is required"))
	} else if strings.ContainsRune(c.Extension, filepath.Separator) {
		errs = append(errs, fmt.Errorf("extension %q must not contain a path separator", c.Extension))
	}

	if c.Suffix == "" && c.OutputDir == "" {
		errs = append(errs, errors.New("suffix must not be empty unless output_dir is set, outputs would overwrite their inputs"))
	}
	if strings.ContainsRune(c.Suffix, filepath.Separator) {
		errs = append(errs, fmt.Errorf("suffix %q must not contain a path separator", c.Suffix))
	}

	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err))
		}
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	if !slices.Contains(OutputModes, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("invalid output format %q (expected one of %s)", c.OutputFormat, strings.Join(OutputModes, ", ")))
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log format %q (expected one of %s)", c.LogFormat, strings.Join(LogFormats, ", ")))
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if c.History.Limit < 0 {
		errs = append(errs, fmt.Errorf("history.limit must not be negative, got %d", c.History.Limit))
	}

	return errors.Join(errs...)
}
