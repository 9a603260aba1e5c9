package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/histmap/internal/checksum"
	"github.com/starford/histmap/internal/journeyfile"
	"github.com/starford/histmap/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted"; name is the journey name.
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the journeys root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// Storage writes land as a temp file renamed over the target, so the
// watcher sees Create on the final name. Files whose checksum is already in
// the index were indexed by their writer and produce no callback. Rename events on an old name
// trigger a debounced reconciliation pass.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			name, isJourney := journeyfile.NameFromFile(rel)
			if !isJourney || journeyfile.FileName(name) != rel {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if info, statErr := os.Stat(ev.Name); statErr != nil || info.IsDir() {
					continue
				}
				data, readErr := store.Read(name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				existed, _ := db.GetChecksum(name)
				if existed == checksum.Sum(data) {
					// already indexed by the writer
					continue
				}
				if idxErr := IndexFile(db, name, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if existed == "" {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("journey", name), slog.String("op", kind))
				if cb != nil {
					cb(kind, name)
				}

			case ev.Op&fsnotify.Remove != 0:
				if existed, _ := db.GetChecksum(name); existed == "" {
					continue
				}
				if delErr := db.DeleteJourney(name); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("journey", name), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("journey", name))
				if cb != nil {
					cb("deleted", name)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create.
				if existed, _ := db.GetChecksum(name); existed == "" {
					scheduleReconcile()
					continue
				}
				if delErr := db.DeleteJourney(name); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("journey", name), slog.String("error", delErr.Error()))
				} else if cb != nil {
					cb("deleted", name)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a file on disk and indexes files
// whose checksum differs from the index.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Name] = m.Checksum
	}

	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if delErr := db.DeleteJourney(name); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("journey", name))
				if cb != nil {
					cb("deleted", name)
				}
			}
		}
	}

	for name, cs := range disk {
		prev, indexed := checksums[name]
		if prev == cs {
			continue
		}
		data, readErr := store.Read(name)
		if readErr != nil {
			continue
		}
		if idxErr := IndexFile(db, name, data); idxErr == nil {
			kind := "updated"
			if !indexed {
				kind = "created"
			}
			logger.Debug("reconcile: indexed", slog.String("journey", name))
			if cb != nil {
				cb(kind, name)
			}
		}
	}
}
