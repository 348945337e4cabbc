// Package watcher reports changes made under a quill root by other programs.
// It only emits events; applying them to a store is the caller's job, so
// the store keeps a single owner.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/quill/pkg/quill/logging"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
)

// Op is the kind of change.
type Op int

const (
	Created Op = iota
	Modified
	Removed
)

// String returns the string representation of the op.
func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a change to a key under the root. Dir is set when a watched
// directory was removed, in which case every key below it is gone too.
type Event struct {
	Key string
	Op  Op
	Dir bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter drops events for keys where skip returns true.
func WithFilter(skip func(key string) bool) Option {
	return func(w *Watcher) { w.skip = skip }
}

// Watcher watches a root directory recursively.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	skip    func(string) bool
	logger  *logging.Logger

	mu     sync.Mutex
	paths  map[string]bool
	closed bool
}

// New starts watching root and every directory below it. Symlinks are not
// followed.
func New(root string, opts ...Option) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:    absRoot,
		watcher: fsw,
		skip:    func(string) bool { return false },
		logger:  logging.Get("watcher"),
		paths:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree adds watches for dir and its subdirectories, skipping filtered ones.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if key, err := pathkey.FromPath(w.root, path); err == nil && w.skip(key) {
				return filepath.SkipDir
			}
		}
		return w.addWatch(path)
	})
}

func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to add watch", "path", path, "error", err)
		return err
	}
	w.paths[path] = true
	return nil
}

// Run delivers events to fn until ctx is cancelled or the watcher is
// closed. fn runs on the caller's goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			for _, e := range w.translate(ev) {
				fn(e)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// translate turns one fsnotify event into zero or more key events.
func (w *Watcher) translate(ev fsnotify.Event) []Event {
	key, err := pathkey.FromPath(w.root, ev.Name)
	if err != nil || w.skip(key) {
		return nil
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// A rename shows up as a create for the new name.
		return []Event{{Key: key, Op: Removed, Dir: w.dropWatches(ev.Name)}}

	case ev.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return w.createdDir(ev.Name)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return []Event{{Key: key, Op: Created}}

	case ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		return []Event{{Key: key, Op: Modified}}
	}
	return nil
}

// createdDir watches a new directory and reports the files already in it,
// since a directory moved in from elsewhere arrives with its contents.
func (w *Watcher) createdDir(dir string) []Event {
	if err := w.addTree(dir); err != nil {
		w.logger.Warn("failed to watch new directory", "path", dir, "error", err)
	}

	var events []Event
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if key, kerr := pathkey.FromPath(w.root, path); kerr == nil && !w.skip(key) {
			events = append(events, Event{Key: key, Op: Created})
		}
		return nil
	})
	return events
}

// dropWatches removes watches on path and below; it reports whether path
// was a watched directory.
func (w *Watcher) dropWatches(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	wasDir := w.paths[path]
	for p := range w.paths {
		if p == path || isSubPath(p, path) {
			_ = w.watcher.Remove(p)
			delete(w.paths, p)
		}
	}
	return wasDir
}

// Watched returns the number of watched directories.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
