package runner

import (
	"context"
	"fmt"
	"log/slog"
	"monkey/internal/object"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch runs the file once and again after every change to it, handing
// each outcome to report, until ctx is cancelled. Runs never overlap.
func (r *Runner) Watch(ctx context.Context, path string, report func(object.Object, error)) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	slog.Info("watching", slog.String("path", target))

	report(r.RunFile(path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			slog.Info("file changed, re-running", slog.String("path", target))
			report(r.RunFile(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.Any("error", err))
		}
	}
}
