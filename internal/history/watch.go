package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called after the watched history file settles.
type ChangeCallback func()

// WatchFile watches the directory holding path and calls cb once writes to
// the file have been quiet for debounce. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself because
// browsers and export tools replace the file instead of writing in place.
func WatchFile(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	logger.Info("history watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("history watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			logger.Debug("history watcher: changed", slog.String("path", abs))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("history watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
