package snapshot

import (
	"GraphSpectra/internal/heuristics"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

type loaded struct {
	collector *heuristics.Collector
	timestamp string
}

// Watcher keeps the newest snapshot of a Store loaded. Readers get it through
// Current; a newly completed snapshot replaces it atomically.
type Watcher struct {
	store   *Store
	fs      *fsnotify.Watcher
	current atomic.Pointer[loaded]

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher watches the store's root directory, creating it if needed.
func NewWatcher(store *Store) (*Watcher, error) {
	if err := os.MkdirAll(store.rootPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot root: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(store.rootPath); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch '%s': %w", store.rootPath, err)
	}
	return &Watcher{store: store, fs: fw, done: make(chan struct{})}, nil
}

// Start loads the newest snapshot and begins watching for new ones.
func (w *Watcher) Start() {
	w.Reload()
	w.wg.Add(1)
	go w.loop()
	log.Printf("Snapshot watcher started on %s", w.store.rootPath)
}

// Stop ends watching.
func (w *Watcher) Stop() {
	close(w.done)
	w.fs.Close()
	w.wg.Wait()
	log.Println("Snapshot watcher stopped.")
}

// Current returns the newest loaded collector, nil if none exists yet.
func (w *Watcher) Current() *heuristics.Collector {
	if l := w.current.Load(); l != nil {
		return l.collector
	}
	return nil
}

// Timestamp returns the timestamp of the loaded snapshot, "" if none.
func (w *Watcher) Timestamp() string {
	if l := w.current.Load(); l != nil {
		return l.timestamp
	}
	return ""
}

// Reload loads the newest complete snapshot if it differs from the current one.
func (w *Watcher) Reload() {
	c, ts, err := w.store.LoadLatest()
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			log.Printf("Warning: failed to load latest snapshot: %v", err)
		}
		return
	}
	if cur := w.current.Load(); cur != nil && cur.timestamp == ts {
		return
	}
	w.current.Store(&loaded{collector: c, timestamp: ts})
	log.Printf("Loaded snapshot %s", ts)
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Snapshot watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// summary.json lands inside the new directory.
			if err := w.fs.Add(ev.Name); err != nil {
				log.Printf("Warning: failed to watch '%s': %v", ev.Name, err)
			}
			w.Reload()
			return
		}
	}
	if filepath.Base(ev.Name) == SummaryFileName && (ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
		w.Reload()
	}
}
