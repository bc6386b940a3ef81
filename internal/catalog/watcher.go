package catalog

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sitescout-io/sitescout/internal/config"
)

// Watcher reloads the catalog when sites.yaml changes on disk and
// signals listeners through Changed. Signals are coalesced: a listener
// that misses several edits still sees one pending notification.
type Watcher struct {
	catalog   *Catalog
	fsWatcher *fsnotify.Watcher
	changed   chan struct{}
	done      chan struct{}

	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// Watch starts watching the global config directory for edits to the
// site catalog file.
func Watch(c *Catalog) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	globalDir, err := config.GlobalDir()
	if err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	if err := fsWatcher.Add(globalDir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		catalog:   c,
		fsWatcher: fsWatcher,
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		debounce:  make(map[string]*time.Timer),
	}
	go w.processEvents()
	return w, nil
}

// Changed signals after the catalog has been reloaded from disk.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
	_ = w.fsWatcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Rename matters: atomic writes (write tmp, rename onto target)
	// surface as Rename on the target file.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Base(event.Name) != config.SitesFileName {
		return
	}
	w.debounceEvent(event.Name, func() {
		if err := w.catalog.Reload(); err != nil {
			log.Printf("[watcher] reload failed: %v", err)
			return
		}
		log.Printf("[watcher] site catalog reloaded")
		select {
		case w.changed <- struct{}{}:
		default:
		}
	})
}

// debounceEvent collapses event bursts for the same path. Editors and
// atomic writes commonly emit several events per save.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(100*time.Millisecond, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
