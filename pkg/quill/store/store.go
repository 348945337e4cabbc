// Package store implements the quill document store: a flat map from
// slash-delimited keys to entries, backed 1:1 by files under a root
// directory. Content is read lazily, edits are tracked per entry with a
// dirty flag, and only dirty entries are written back on save.
//
// A Store is not safe for concurrent use. It is meant to be owned by a
// single event loop; see package session.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jamesainslie/quill/pkg/quill/entry"
	"github.com/jamesainslie/quill/pkg/quill/logging"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
)

var (
	// ErrNotFound is returned when a key is not in the store.
	ErrNotFound = errors.New("key not found")

	// ErrIO wraps filesystem failures while loading, saving or deleting.
	ErrIO = errors.New("store i/o failure")
)

// DefaultWorkers is the directory walk concurrency used when none is set.
const DefaultWorkers = 4

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is logging.Get("store").
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExclude skips files and directories whose key or base name matches
// any of the glob patterns during Load.
func WithExclude(patterns ...string) Option {
	return func(s *Store) {
		s.excludeSrc = append(s.excludeSrc, patterns...)
	}
}

// WithImageExtensions makes Load create Image entries for files with these
// extensions. Without it every file is text.
func WithImageExtensions(exts ...string) Option {
	return func(s *Store) {
		s.imageExts = append(s.imageExts, exts...)
	}
}

// WithDeleter replaces os.Remove as the way DeleteFile unlinks files.
func WithDeleter(fn func(path string) error) Option {
	return func(s *Store) {
		if fn != nil {
			s.deleter = fn
		}
	}
}

// WithWorkers sets the number of directory walk workers.
func WithWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Store is the document store.
type Store struct {
	root      string
	entries   map[string]entry.Entry
	collapsed map[string]struct{}

	logger     *logging.Logger
	excludeSrc []string
	exclude    []glob.Glob
	imageExts  []string
	deleter    func(string) error
	workers    int
}

// New returns an empty store rooted at root. Call Load to populate it.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:      absRoot(root),
		entries:   make(map[string]entry.Entry),
		collapsed: make(map[string]struct{}),
		logger:    logging.Get("store"),
		deleter:   os.Remove,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, p := range s.excludeSrc {
		g, err := glob.Compile(p, '/')
		if err != nil {
			s.logger.Warn("ignoring invalid exclude pattern", "pattern", p, "error", err)
			continue
		}
		s.exclude = append(s.exclude, g)
	}
	return s
}

func absRoot(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return filepath.Clean(root)
}

// Root returns the root directory.
func (s *Store) Root() string { return s.root }

// ChangeRoot switches to a new root and discards every entry and the
// collapse state. Nothing is flushed and nothing is loaded.
func (s *Store) ChangeRoot(root string) {
	s.root = absRoot(root)
	s.entries = make(map[string]entry.Entry)
	s.collapsed = make(map[string]struct{})
	s.logger.Info("root changed", "root", s.root)
}

// Contains reports whether key is in the store.
func (s *Store) Contains(key string) bool {
	_, ok := s.entries[pathkey.Normalize(key)]
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Entry returns the entry for key.
func (s *Store) Entry(key string) (entry.Entry, bool) {
	e, ok := s.entries[pathkey.Normalize(key)]
	return e, ok
}

// Contents returns the text content of key, reading it from disk on first
// access. If the read fails the placeholder text is returned together with
// an error wrapping entry.ErrUnreadable.
func (s *Store) Contents(key string) (string, error) {
	key = pathkey.Normalize(key)
	e, ok := s.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	txt, ok := e.(*entry.Text)
	if !ok {
		return "", fmt.Errorf("%w: %s is %s", entry.ErrNotText, key, e.Kind())
	}
	content, err := txt.Contents()
	if err != nil {
		s.logger.Warn("lazy load failed", "key", key, "error", err)
	}
	return content, err
}

// Insert stores content under key, replacing any existing entry, and marks
// it dirty. A new key may not name a folder or sit under an existing file.
func (s *Store) Insert(key, content string) error {
	key = pathkey.Normalize(key)
	if err := pathkey.Validate(key); err != nil {
		return err
	}
	existing, ok := s.entries[key]
	if txt, isText := existing.(*entry.Text); isText {
		txt.SetContents(content)
		return nil
	}
	if !ok {
		if err := s.checkPlacement(key); err != nil {
			return err
		}
	}
	s.entries[key] = entry.NewTextWithContent(pathkey.ToPath(s.root, key), content)
	return nil
}

// MarkDirty flags key for the next save. Absent keys are ignored.
func (s *Store) MarkDirty(key string) {
	if e, ok := s.entries[pathkey.Normalize(key)]; ok {
		e.SetDirty(true)
	}
}

// UniqueKey returns base if it is free, otherwise "base n" for the smallest
// n >= 1 that is free. A key is taken when it is a key or a folder.
func (s *Store) UniqueKey(base string) string {
	base = pathkey.Normalize(base)
	if !s.taken(base) {
		return base
	}
	// Each key takes at most one candidate, so one of the first Len()+1
	// is free.
	for n := 1; n <= len(s.entries)+1; n++ {
		candidate := base + " " + strconv.Itoa(n)
		if !s.taken(candidate) {
			return candidate
		}
	}
	panic("store: no free key for " + base)
}

func (s *Store) taken(key string) bool {
	_, ok := s.entries[key]
	return ok || s.isFolder(key)
}

// isFolder reports whether some key lies under key.
func (s *Store) isFolder(key string) bool {
	prefix := key + pathkey.Separator
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// fileAncestor returns the first folder of key that is itself a key.
func (s *Store) fileAncestor(key string) (string, bool) {
	segs := pathkey.Split(key)
	for i := 1; i < len(segs); i++ {
		dir := strings.Join(segs[:i], pathkey.Separator)
		if _, ok := s.entries[dir]; ok {
			return dir, true
		}
	}
	return "", false
}

// checkPlacement keeps keys on leaves: key must not be a folder and none of
// its folders may be a file.
func (s *Store) checkPlacement(key string) error {
	if dir, ok := s.fileAncestor(key); ok {
		return fmt.Errorf("%w: %q is under file %q", pathkey.ErrInvalidKey, key, dir)
	}
	if s.isFolder(key) {
		return fmt.Errorf("%w: %q is a folder", pathkey.ErrInvalidKey, key)
	}
	return nil
}

// Rename moves the entry at oldKey to newKey, keeping its content and dirty
// flag, and returns the key it ended up under. A newKey that is taken by a
// key or a folder is made unique with UniqueKey; one that sits under an
// existing file is rejected with pathkey.ErrInvalidKey. Renaming an absent
// key is a no-op returning "".
//
// Text content is read into memory before the move; the old file is left on
// disk and a clean entry stays clean, so callers must MarkDirty and Save to
// persist the move. Image files are moved on disk immediately since they are
// never written by Save.
func (s *Store) Rename(oldKey, newKey string) (string, error) {
	oldKey = pathkey.Normalize(oldKey)
	newKey = pathkey.Normalize(newKey)
	if err := pathkey.Validate(newKey); err != nil {
		return "", err
	}

	e, ok := s.entries[oldKey]
	if !ok {
		return "", nil
	}
	if oldKey == newKey {
		return oldKey, nil
	}
	if dir, ok := s.fileAncestor(newKey); ok {
		return "", fmt.Errorf("%w: %q is under file %q", pathkey.ErrInvalidKey, newKey, dir)
	}
	if s.taken(newKey) {
		unique := s.UniqueKey(newKey)
		s.logger.Info("rename target taken", "want", newKey, "using", unique)
		newKey = unique
	}

	newPath := pathkey.ToPath(s.root, newKey)
	switch v := e.(type) {
	case *entry.Text:
		if _, err := v.Contents(); err != nil {
			return "", fmt.Errorf("renaming %s: %w", oldKey, err)
		}
		v.Relocate(newPath)
	case *entry.Image:
		if err := moveFile(v.Path(), newPath); err != nil {
			return "", fmt.Errorf("%w: renaming %s: %w", ErrIO, oldKey, err)
		}
		v.Relocate(newPath)
	}

	delete(s.entries, oldKey)
	s.entries[newKey] = e
	s.logger.Debug("renamed", "from", oldKey, "to", newKey, "dirty", e.IsDirty())
	return newKey, nil
}

func moveFile(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	return os.Rename(from, to)
}

// Remove drops key from memory. The backing file is untouched.
func (s *Store) Remove(key string) {
	delete(s.entries, pathkey.Normalize(key))
}

// DeleteFile drops key and unlinks its backing file. A file that is already
// gone is logged and ignored. Absent keys are a no-op.
func (s *Store) DeleteFile(key string) error {
	key = pathkey.Normalize(key)
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	delete(s.entries, key)

	path := e.Path()
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		s.logger.Info("delete: file already gone", "key", key, "path", path)
		return nil
	}
	if err := s.deleter(path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("delete: file already gone", "key", key, "path", path)
			return nil
		}
		s.logger.Error("delete failed", "key", key, "error", err)
		return fmt.Errorf("%w: deleting %s: %w", ErrIO, key, err)
	}
	s.logger.Debug("deleted", "key", key)
	return nil
}

// Track adds key as a clean, unmaterialized entry if it is not already in
// the store. It is how files created outside quill are picked up.
func (s *Store) Track(key string) error {
	key = pathkey.Normalize(key)
	if err := pathkey.Validate(key); err != nil {
		return err
	}
	if _, ok := s.entries[key]; ok {
		return nil
	}
	s.entries[key] = s.newEntry(key)
	return nil
}

// Invalidate drops cached content for a clean text entry so the next read
// goes to disk. Dirty entries keep their in-memory content.
func (s *Store) Invalidate(key string) {
	if txt, ok := s.entries[pathkey.Normalize(key)].(*entry.Text); ok {
		txt.Unload()
	}
}

func (s *Store) newEntry(key string) entry.Entry {
	path := pathkey.ToPath(s.root, key)
	if entry.KindOf(key, s.imageExts) == entry.KindImage {
		return entry.NewImage(path)
	}
	return entry.NewText(path)
}

// Dirty returns the keys of every dirty entry, sorted.
func (s *Store) Dirty() []string {
	var keys []string
	for k, e := range s.entries {
		if e.IsDirty() {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
