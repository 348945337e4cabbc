package store

import (
	"slices"

	"github.com/jamesainslie/quill/pkg/quill/pathkey"
)

// ToggleCollapse adds folder to the collapse set, or removes it if present.
func (s *Store) ToggleCollapse(folder string) {
	folder = pathkey.Normalize(folder)
	if _, ok := s.collapsed[folder]; ok {
		delete(s.collapsed, folder)
		return
	}
	s.collapsed[folder] = struct{}{}
}

// IsCollapsed reports whether folder, or any folder above it, is collapsed.
func (s *Store) IsCollapsed(folder string) bool {
	folder = pathkey.Normalize(folder)
	if _, ok := s.collapsed[folder]; ok {
		return true
	}
	for _, p := range pathkey.Prefixes(folder) {
		if _, ok := s.collapsed[p]; ok {
			return true
		}
	}
	return false
}

// Collapsed returns the collapse set, sorted.
func (s *Store) Collapsed() []string {
	out := make([]string, 0, len(s.collapsed))
	for p := range s.collapsed {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
