package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
)

// Load walks the root directory and adds an entry for every regular file.
// Entries are clean and their content is not read. Subdirectories that
// cannot be read are logged and skipped. A root that cannot be opened is
// returned as an error wrapping ErrIO.
//
// Dirty entries already in the store are kept as they are; clean ones are
// replaced so their content is reread on next access. Load does not remove
// entries whose files have disappeared; use ChangeRoot to start afresh.
func (s *Store) Load() error {
	if err := s.checkRoot(); err != nil {
		s.logger.Error("load failed", "root", s.root, "error", err)
		return err
	}
	if !writable(s.root) {
		s.logger.Warn("root is not writable, saves will fail", "root", s.root)
	}

	w := &walker{store: s}
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: s.workers,
	}
	if err := fastwalk.Walk(&conf, s.root, w.visit); err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		s.logger.Error("load failed", "root", s.root, "error", err)
		return fmt.Errorf("%w: walking %s: %w", ErrIO, s.root, err)
	}
	if w.rootErr != nil {
		s.logger.Error("load failed", "root", s.root, "error", w.rootErr)
		return fmt.Errorf("%w: reading %s: %w", ErrIO, s.root, w.rootErr)
	}

	added, kept := 0, 0
	for _, key := range w.keys {
		if old, ok := s.entries[key]; ok && old.IsDirty() {
			kept++
			continue
		}
		s.entries[key] = s.newEntry(key)
		added++
	}
	s.logger.Info("loaded", "root", s.root, "files", added, "dirty_kept", kept, "skipped_dirs", w.skipped)
	return nil
}

func (s *Store) checkRoot() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrIO, s.root)
	}
	f, err := os.Open(s.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return f.Close()
}

// walker collects keys from fastwalk callbacks, which run concurrently.
type walker struct {
	store *Store

	mu      sync.Mutex
	keys    []string
	skipped int
	rootErr error
}

func (w *walker) visit(path string, d fs.DirEntry, err error) error {
	s := w.store
	if err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		if path == s.root {
			w.rootErr = err
			return nil
		}
		w.skipped++
		s.logger.Warn("skipping unreadable path", "path", path, "error", err)
		return nil
	}
	if path == s.root {
		return nil
	}

	key, kerr := pathkey.FromPath(s.root, path)
	if kerr != nil {
		return nil
	}
	if s.Excluded(key) {
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	}
	if !d.Type().IsRegular() {
		return nil
	}

	w.mu.Lock()
	w.keys = append(w.keys, key)
	w.mu.Unlock()
	return nil
}

// Excluded reports whether key or its base name matches an exclude pattern.
func (s *Store) Excluded(key string) bool {
	base := pathkey.Base(key)
	for _, g := range s.exclude {
		if g.Match(key) || g.Match(base) {
			return true
		}
	}
	return false
}
