package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvtranspose/internal/cli/output"
	"github.com/leapstack-labs/csvtranspose/internal/engine"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
	// Ready is called once the watcher is registered. Used by tests.
	Ready func()
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return newWatchCommand(&WatchOptions{})
}

func newWatchCommand(opts *WatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Transpose files again whenever they change",
		Long: `Run once over dir, then keep watching it and transpose each matching file
again after it is created or modified. Result files are ignored so they do not
trigger further runs. Failures are reported and watching continues.

Stop with Ctrl+C.`,
		Example: `  # Watch the current directory
  csvtranspose watch

  # Wait for writes to settle for one second before transposing
  csvtranspose watch ./incoming --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", engine.DefaultDebounce, "Quiet period before a changed file is transposed")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	cfg := getConfig()
	dir := resolveDir(cfg, args)

	var r *output.Renderer
	onFile := func(fr *engine.FileResult) {
		switch r.EffectiveMode() {
		case output.ModeJSON:
			_ = r.JSON(fileInfo(fr))
		default:
			fileStatusLine(r, fr)
		}
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, dir, onFile)
	if err != nil {
		return err
	}
	defer cleanup()
	r = cmdCtx.Renderer

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := cmdCtx.Engine.Run(ctx, dir)
	if res == nil {
		return err
	}
	if err != nil {
		cmdCtx.Logger.Warn("initial run had failures", "error", err)
	}

	debounce := cfg.Watch.Debounce
	if cmd.Flags().Changed("debounce") {
		debounce = opts.Debounce
	}

	if r.EffectiveMode() != output.ModeJSON {
		r.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", dir))
	}

	return cmdCtx.Engine.Watch(ctx, dir, engine.WatchOptions{
		Debounce: debounce,
		Ready:    opts.Ready,
	})
}
