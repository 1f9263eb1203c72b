package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/weldsafe/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single Save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls a reload function whenever the manifest in a store
// directory is replaced.
type Watcher struct {
	dir      string
	reload   func(ctx context.Context) error
	debounce time.Duration
}

// NewWatcher creates a watcher for the store's directory.
func NewWatcher(store *Store, reload func(ctx context.Context) error) *Watcher {
	return &Watcher{dir: store.Dir(), reload: reload, debounce: DefaultDebounce}
}

// Run blocks until ctx is cancelled. A failed reload is logged and the
// watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("Watching %s for index changes", w.dir)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !manifestChanged(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Index watcher: %v", err)

		case <-fire:
			fire = nil
			if err := w.reload(ctx); err != nil {
				logger.Warn("Index reload failed, keeping the current index: %v", err)
			}
		}
	}
}

// manifestChanged reports whether ev replaced or rewrote the manifest.
func manifestChanged(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != ManifestFile {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)
}
