package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is re-transposed.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce delays processing until writes to a file settle.
	Debounce time.Duration
	// Ready is called once the watcher is registered (optional).
	Ready func()
}

// Watch transposes matching files in dir whenever they are created or
// written, until ctx is cancelled. Files that look like outputs are ignored so
// results do not trigger further runs. Failures are logged and reported
// through OnFile; they do not stop the watch.
func (e *Engine) Watch(ctx context.Context, dir string, opts WatchOptions) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return &Error{Kind: KindFilesystemAccess, Path: dir, Err: err}
	}
	e.logger.Info("watching directory", "dir", dir, "debounce", debounce)
	if opts.Ready != nil {
		opts.Ready()
	}

	deb := newDebouncer(debounce)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !e.watches(event.Name) {
				continue
			}

			deb.schedule(ctx, event.Name)

		case pf := <-deb.fire:
			if !deb.claim(pf) {
				continue
			}
			path := pf.path
			e.logger.Debug("file changed, transposing", "path", path)

			fr, err := e.TransposeFile(ctx, path)
			if err != nil {
				e.logger.Error("transpose failed",
					"path", path,
					"kind", KindOf(err).String(),
					"error", err,
				)
			}
			if e.onFile != nil {
				e.onFile(fr)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}

// pendingFile is a debounced change ready to be processed.
type pendingFile struct {
	path string
	gen  uint64
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// debouncer delays each path until no new event arrived for it within delay.
// It is owned by the Watch loop; only the timers touch fire concurrently.
type debouncer struct {
	delay  time.Duration
	fire   chan pendingFile
	timers map[string]pendingTimer
	gen    uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		fire:   make(chan pendingFile),
		timers: make(map[string]pendingTimer),
	}
}

// schedule (re)starts the timer of path.
func (d *debouncer) schedule(ctx context.Context, path string) {
	if pt, ok := d.timers[path]; ok {
		pt.timer.Stop()
	}
	d.gen++
	pf := pendingFile{path: path, gen: d.gen}
	d.timers[path] = pendingTimer{
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.fire <- pf:
			case <-ctx.Done():
			}
		}),
		gen: pf.gen,
	}
}

// claim reports whether pf is the latest timer of its path and forgets it.
// A timer that already fired when a newer event replaced it is stale.
func (d *debouncer) claim(pf pendingFile) bool {
	pt, ok := d.timers[pf.path]
	if !ok || pt.gen != pf.gen {
		return false
	}
	delete(d.timers, pf.path)
	return true
}

func (d *debouncer) stop() {
	for _, pt := range d.timers {
		pt.timer.Stop()
	}
}

// watches reports whether a change to path should trigger a transpose.
func (e *Engine) watches(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, e.ext) {
		return false
	}
	if IsOutputName(name, e.suffix) {
		return false
	}
	excluded, err := matchAny(e.exclude, name)
	return err == nil && !excluded
}
