// Package watch provides a recursive fsnotify watcher over a workspace
// root, debounced and filtered the way sagasu's internal/watcher does,
// narrowed to codelens's one job: tell the cache layer a workspace
// needs re-parsing.
package watch

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 400 * time.Millisecond

// fsWatcher is the subset of *fsnotify.Watcher this package depends
// on, so tests can substitute a fake without touching the real
// filesystem notification subsystem.
type fsWatcher interface {
	Add(path string) error
	Close() error
}

// Watcher watches a single workspace root recursively and calls
// onChange (debounced) whenever a file under it is created, written,
// removed, or renamed.
type Watcher struct {
	root     string
	onChange func()
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// NewWatcher constructs a Watcher. Call Start to begin watching.
func NewWatcher(root string, onChange func()) *Watcher {
	return &Watcher{
		root:     filepath.Clean(root),
		onChange: onChange,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
}

// Start opens an fsnotify watch on every directory under root and
// begins processing events in a background goroutine. The caller must
// call Stop to release the underlying OS watch descriptors.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(fsw, w.root); err != nil {
		fsw.Close()
		return err
	}

	go w.run(fsw)
	return nil
}

func (w *Watcher) run(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			fsw.Close()
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			switch ev.Op {
			case fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename:
				w.trigger()
			}
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// trigger schedules onChange to run after the debounce window,
// collapsing bursts of events (a save in most editors fires several)
// into a single cache invalidation.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// Stop cancels any pending debounce timer and marks the watcher
// stopped, so a late fsnotify event arriving after Stop is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
}

// addTree walks root and adds every directory to fw, the same
// "recursive means watch every subdirectory individually" approach
// fsnotify requires and sagasu's addRootLocked uses.
func addTree(fw fsWatcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
