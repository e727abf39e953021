package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the external registry file when it changes on disk. A file
// that fails to parse is logged and the last good registry stays active.
type Watcher struct {
	path     string
	holder   *Holder
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

func NewWatcher(path string, holder *Holder, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		holder:   holder,
		debounce: debounce,
		logger:   logger.With("component", "registry_watcher", "path", path),
	}
}

// Start watches the file's directory so editors that replace the file by
// rename are still observed. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	r, err := LoadFile(w.path)
	if err != nil {
		registryLoadErrors.Inc()
		w.logger.Warn("registry reload failed, keeping previous registry", "error", err)
		return
	}
	w.holder.Set(r)
	registryReloads.Inc()
	w.logger.Info("registry reloaded", "features", r.Count(), "duplicate_codes", len(r.Scan().DuplicateCodes))
}
