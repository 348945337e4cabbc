package session

import (
	"strings"

	"github.com/jamesainslie/quill/pkg/quill/pathkey"
	"github.com/jamesainslie/quill/pkg/quill/watcher"
)

// Reconcile applies a change made outside quill. Unsaved work always wins:
// dirty entries, and the open file once its buffer has been edited, are
// left alone. It reports whether the store or the editor changed.
func (s *Session) Reconcile(ev watcher.Event) bool {
	key := pathkey.Normalize(ev.Key)
	if key == "" {
		return false
	}
	if key == s.current {
		if err := s.flush(); err != nil {
			return false
		}
	}

	switch ev.Op {
	case watcher.Created:
		if !s.store.Contains(key) {
			if err := s.store.Track(key); err != nil {
				return false
			}
			s.logger.Debug("tracked external file", "key", key)
			return true
		}
		return s.refresh(key)

	case watcher.Modified:
		return s.refresh(key)

	case watcher.Removed:
		if ev.Dir {
			changed := false
			for _, k := range s.store.Keys() {
				if strings.HasPrefix(k, key+pathkey.Separator) && s.forget(k) {
					changed = true
				}
			}
			return changed
		}
		return s.forget(key)
	}
	return false
}

// refresh drops the cached content of a clean entry and, if it is the open
// file, reloads the editor.
func (s *Session) refresh(key string) bool {
	e, ok := s.store.Entry(key)
	if !ok || e.IsDirty() {
		return false
	}
	s.store.Invalidate(key)
	if key == s.current {
		content, _ := s.store.Contents(key)
		s.editor.SetText(content)
	}
	s.logger.Debug("refreshed external change", "key", key)
	return true
}

// forget removes a clean entry whose file is gone.
func (s *Session) forget(key string) bool {
	e, ok := s.store.Entry(key)
	if !ok || e.IsDirty() {
		return false
	}
	if key == s.current {
		s.current = ""
		s.editor.SetText("")
	}
	s.store.Remove(key)
	s.logger.Debug("forgot removed file", "key", key)
	return true
}
