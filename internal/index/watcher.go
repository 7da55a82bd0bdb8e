package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/almanac/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted"; key is the object key.
type EventCallback func(kind string, key string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the store root and keeps the index
// in step with author and poem objects until ctx is cancelled. cb (if
// non-nil) runs after each successful index mutation.
//
// Directories created at runtime are added to the watch list. Renames
// schedule a debounced reconciliation pass, since fsnotify only reports
// the old name.
func Watch(ctx context.Context, db Catalog, store *storage.FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, key string) {
		if cb != nil {
			cb(kind, key)
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
			reconcile(ctx, db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Objects may land before the directory watch is in place.
					scheduleReconcile()
					continue
				}
			}

			if !storage.IsObjectFile(filepath.Base(ev.Name)) {
				continue
			}
			key, keyErr := store.KeyFor(ev.Name)
			if keyErr != nil || !Indexable(key) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(key)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("key", key), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := indexObject(ctx, db, key, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("key", key), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("key", key), slog.String("op", kind))
				notify(kind, key)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if delErr := db.DeleteKey(ctx, key); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("key", key), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: deleted", slog.String("key", key))
					notify("deleted", key)
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries whose objects are gone and indexes
// objects the index has not seen at their current checksum.
func reconcile(ctx context.Context, db Catalog, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums(ctx)
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	objects, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	present := make(map[string]string, len(objects))
	for _, o := range objects {
		if Indexable(o.Key) {
			present[o.Key] = o.Checksum
		}
	}

	for k := range checksums {
		if _, ok := present[k]; ok {
			continue
		}
		if delErr := db.DeleteKey(ctx, k); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("key", k))
			notify("deleted", k)
		}
	}

	for k, cs := range present {
		if checksums[k] == cs {
			continue
		}
		data, readErr := store.Read(k)
		if readErr != nil {
			continue
		}
		if idxErr := indexObject(ctx, db, k, data); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("key", k))
			notify("created", k)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
