// Package watch re-runs a function when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Func is called after the watched file changes. Its error is logged and
// watching continues.
type Func func(ctx context.Context, path string) error

// Watcher watches a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a Watcher for path.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	return &Watcher{path: abs, debounce: DefaultDebounce}, nil
}

// WithDebounce sets how long the file must be quiet before fn runs.
// Bursts of writes within the period trigger a single call.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// WithLogger sets the logger.
// If not set, slog.Default() will be used.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	w.logger = logger
	return w
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) log() *slog.Logger {
	if w.logger == nil {
		return slog.Default()
	}
	return w.logger
}

// Start begins watching and returns once the watch is in place. fn runs on
// the watcher goroutine, never concurrently with itself. The returned
// channel is closed when watching stops, after ctx is done.
func (w *Watcher) Start(ctx context.Context, fn Func) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// The directory, not the file: editors that save atomically replace it.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	w.log().Info("watching for changes", slog.String("path", w.path))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer fsw.Close()
		w.loop(ctx, fsw, fn)
	}()
	return done, nil
}

// Run is Start followed by waiting for ctx to be done.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	done, err := w.Start(ctx, fn)
	if err != nil {
		return err
	}
	<-done
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, fn Func) {
	name := filepath.Base(w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.log().Debug("file changed",
				slog.String("event", event.Op.String()),
				slog.String("file", event.Name))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := fn(ctx, w.path); err != nil {
				w.log().Error("change handler failed", slog.String("path", w.path), slog.Any("error", err))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log().Error("file watcher error", slog.Any("error", err))

		case <-ctx.Done():
			w.log().Debug("stopped watching", slog.String("path", w.path))
			return
		}
	}
}
