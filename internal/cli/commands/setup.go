package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvtranspose/internal/cli/config"
	"github.com/leapstack-labs/csvtranspose/internal/cli/output"
	"github.com/leapstack-labs/csvtranspose/internal/engine"
	"github.com/leapstack-labs/csvtranspose/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
	Store    state.Store
}

// NewCommandContext creates a CommandContext with engine and renderer.
// When history is enabled the store under dir is opened and attached to the
// engine. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command, dir string, onFile func(*engine.FileResult)) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cfg := cmdCtx.Cfg

	var store *state.SQLiteStore
	if cfg.History.Enabled {
		var err error
		store, err = openHistory(cfg.HistoryPath(dir), cmdCtx.Logger)
		if err != nil {
			return nil, nil, err
		}
		cmdCtx.Store = store
	}

	eng, err := createEngine(cfg, cmdCtx.Store, onFile, cmdCtx.Logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that only read configuration or history.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands executed outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// resolveDir picks the directory to operate on: the positional argument,
// then the configured dir, then the working directory.
func resolveDir(cfg *config.Config, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if cfg.Dir != "" {
		return cfg.Dir
	}
	return config.DefaultDir
}

func createEngine(cfg *config.Config, store state.Store, onFile func(*engine.FileResult), logger *slog.Logger) (*engine.Engine, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	engineCfg := engine.Config{
		Extension:       cfg.Extension,
		Suffix:          cfg.Suffix,
		OutputDir:       cfg.OutputDir,
		Exclude:         cfg.Exclude,
		Dialect:         dialect,
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		Store:           store,
		OnFile:          onFile,
		Logger:          logger,
	}

	return engine.New(engineCfg)
}

// openHistory opens (creating if needed) the history database at path.
func openHistory(path string, logger *slog.Logger) (*state.SQLiteStore, error) {
	// Ensure history directory exists
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}
	return store, nil
}
