package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/quill/pkg/quill/entry"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
)

// SaveAll writes every dirty text entry to disk and clears its dirty flag.
// Images are never written. The first failure stops the batch and is
// returned wrapping ErrIO; files written before it stay written.
func (s *Store) SaveAll() error {
	written := 0
	for _, key := range s.Dirty() {
		txt, ok := s.entries[key].(*entry.Text)
		if !ok {
			continue
		}
		if err := s.write(key, txt); err != nil {
			s.logger.Error("save failed", "key", key, "written", written, "error", err)
			return err
		}
		written++
	}
	if written > 0 {
		s.logger.Info("saved", "files", written)
	}
	return nil
}

// Save writes key if it is dirty text. It panics if key is not in the
// store; callers check Contains first.
func (s *Store) Save(key string) error {
	key = pathkey.Normalize(key)
	e, ok := s.entries[key]
	if !ok {
		panic(fmt.Sprintf("store: save of unknown key %q", key))
	}
	txt, ok := e.(*entry.Text)
	if !ok || !txt.IsDirty() {
		return nil
	}
	return s.write(key, txt)
}

func (s *Store) write(key string, txt *entry.Text) error {
	content, err := txt.Contents()
	if err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrIO, key, err)
	}
	path := txt.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrIO, key, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrIO, key, err)
	}
	txt.SetDirty(false)
	s.logger.Debug("wrote", "key", key, "bytes", len(content))
	return nil
}
