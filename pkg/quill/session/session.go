// Package session holds the state a quill front end threads through its
// callbacks: the store, the view state, the editor buffer, the file that
// is currently open and the latest search results.
//
// Every operation that reads a consistent snapshot of the store first
// flushes the editor buffer into it.
package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jamesainslie/quill/pkg/quill/entry"
	"github.com/jamesainslie/quill/pkg/quill/logging"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
	"github.com/jamesainslie/quill/pkg/quill/search"
	"github.com/jamesainslie/quill/pkg/quill/state"
	"github.com/jamesainslie/quill/pkg/quill/store"
	"github.com/jamesainslie/quill/pkg/quill/tree"
)

// DefaultNewFileName is the base key for files created with NewFile.
const DefaultNewFileName = "new file"

var (
	// ErrNoFile is returned by operations that need an open file.
	ErrNoFile = errors.New("no file open")

	// ErrNoSelection is returned when there is no selected search result.
	ErrNoSelection = errors.New("no search result selected")
)

// Editor is the front end's text buffer for the open file.
type Editor interface {
	Text() string
	SetText(text string)
}

// Buffer is an in-memory Editor.
type Buffer struct {
	text string
}

func (b *Buffer) Text() string        { return b.text }
func (b *Buffer) SetText(text string) { b.text = text }

// Option configures a Session.
type Option func(*Session)

// WithNewFileName sets the base key used by NewFile.
func WithNewFileName(name string) Option {
	return func(s *Session) {
		if name = pathkey.Normalize(name); name != "" {
			s.newFileName = name
		}
	}
}

// WithSearchContext sets the snippet context of searches.
func WithSearchContext(n int) Option {
	return func(s *Session) { s.engine.Context = n }
}

// Session is not safe for concurrent use.
type Session struct {
	id     string
	store  *store.Store
	view   *state.State
	editor Editor
	engine *search.Engine
	logger *logging.Logger

	newFileName string
	current     string
	results     search.Results
}

// New returns a session over st with nothing open.
func New(st *store.Store, view *state.State, editor Editor, opts ...Option) *Session {
	id := uuid.New().String()
	s := &Session{
		id:          id,
		store:       st,
		view:        view,
		editor:      editor,
		engine:      search.NewEngine(search.DefaultContext),
		logger:      logging.Get("session").With("session", id[:8]),
		newFileName: DefaultNewFileName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Store returns the underlying store.
func (s *Session) Store() *store.Store { return s.store }

// View returns the view state.
func (s *Session) View() *state.State { return s.view }

// Current returns the key of the open file, or "".
func (s *Session) Current() string { return s.current }

// flush copies the editor buffer into the store when it differs from the
// stored content of the open file.
func (s *Session) flush() error {
	if s.current == "" || !s.store.Contains(s.current) {
		return nil
	}
	text := s.editor.Text()
	stored, err := s.store.Contents(s.current)
	switch {
	case err == nil && text == stored:
		return nil
	case errors.Is(err, entry.ErrNotText):
		return nil
	case err != nil && text == entry.Placeholder:
		return nil
	}
	if err := s.store.Insert(s.current, text); err != nil {
		s.logger.Error("flush failed", "key", s.current, "error", err)
		return err
	}
	return nil
}

// Open flushes the open file, then makes key the open file and loads its
// content into the editor. An unreadable file is still opened, showing
// the placeholder text, and the read error is returned.
func (s *Session) Open(key string) (string, error) {
	key = pathkey.Normalize(key)
	if err := s.flush(); err != nil {
		return "", err
	}
	if !s.store.Contains(key) {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}

	content, err := s.store.Contents(key)
	if err != nil && !errors.Is(err, entry.ErrUnreadable) {
		return "", err
	}
	s.current = key
	s.view.SetLastOpen(key)
	s.editor.SetText(content)
	s.logger.Debug("opened", "key", key)
	return content, err
}

// Close flushes and closes the open file.
func (s *Session) Close() error {
	err := s.flush()
	if s.current != "" {
		s.logger.Debug("closed", "key", s.current)
	}
	s.current = ""
	s.editor.SetText("")
	return err
}

// Edited records an edit in the editor. With a file open it is marked
// dirty; otherwise a new file holding the buffer text is created, opened
// and saved, and its key returned.
func (s *Session) Edited() (string, error) {
	if s.current != "" {
		s.store.MarkDirty(s.current)
		return s.current, nil
	}
	return s.newFile(s.editor.Text())
}

// NewFile creates, opens and saves an empty file under a free key derived
// from the configured new file name.
func (s *Session) NewFile() (string, error) {
	if err := s.flush(); err != nil {
		return "", err
	}
	s.editor.SetText("")
	return s.newFile("")
}

func (s *Session) newFile(content string) (string, error) {
	key := s.store.UniqueKey(s.newFileName)
	if err := s.store.Insert(key, content); err != nil {
		return "", err
	}
	s.current = key
	s.view.SetLastOpen(key)
	if err := s.store.Save(key); err != nil {
		return key, err
	}
	s.logger.Info("created", "key", key)
	return key, nil
}

// Rename moves the open file to newName and returns the key it ended up
// under. The file is written at its new path before the old file is
// removed; if that write fails the move is undone in the store.
func (s *Session) Rename(newName string) (string, error) {
	if s.current == "" {
		return "", ErrNoFile
	}
	name := pathkey.Normalize(newName)
	if err := pathkey.Validate(name); err != nil {
		return "", err
	}
	if err := s.flush(); err != nil {
		return "", err
	}

	old := s.current
	oldPath := pathkey.ToPath(s.store.Root(), old)
	wasDirty := false
	if e, ok := s.store.Entry(old); ok {
		wasDirty = e.IsDirty()
	}
	final, err := s.store.Rename(old, name)
	if err != nil {
		return "", err
	}
	if final == "" {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, old)
	}
	if final == old {
		return old, nil
	}

	s.current = final
	s.view.SetLastOpen(final)
	s.store.MarkDirty(final)
	if err := s.store.Save(final); err != nil {
		s.undoRename(final, old, wasDirty)
		return "", err
	}
	if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
		return final, fmt.Errorf("%w: removing %s: %w", store.ErrIO, old, err)
	}
	s.logger.Info("renamed", "from", old, "to", final)
	return final, nil
}

func (s *Session) undoRename(from, to string, dirty bool) {
	if _, err := s.store.Rename(from, to); err != nil {
		s.logger.Error("rename rollback failed", "key", from, "error", err)
		return
	}
	if e, ok := s.store.Entry(to); ok {
		e.SetDirty(dirty)
	}
	s.current = to
	s.view.SetLastOpen(to)
	s.logger.Warn("rename rolled back", "from", from, "to", to)
}

// Delete closes key if it is open, then removes it and its file.
func (s *Session) Delete(key string) error {
	key = pathkey.Normalize(key)
	if key == s.current {
		if err := s.Close(); err != nil {
			return err
		}
		s.view.SetLastOpen("")
	}
	if err := s.store.DeleteFile(key); err != nil {
		return err
	}
	s.logger.Info("deleted", "key", key)
	return nil
}

// Save flushes the editor and writes every dirty file.
func (s *Session) Save() error {
	if err := s.flush(); err != nil {
		return err
	}
	return s.store.SaveAll()
}

// ToggleFolder collapses or expands folder in the tree.
func (s *Session) ToggleFolder(folder string) {
	s.store.ToggleCollapse(folder)
}

// Tree flattens the store with the open file marked.
func (s *Session) Tree() []tree.Node {
	if err := s.flush(); err != nil {
		s.logger.Warn("tree built from stale buffer", "error", err)
	}
	nodes := tree.Rebuild(s.store)
	tree.MarkOpen(nodes, s.current)
	return nodes
}

// Search runs a query and keeps the results for cursor movement.
func (s *Session) Search(flags search.Flags, query string) search.Results {
	if err := s.flush(); err != nil {
		s.logger.Warn("search over stale buffer", "error", err)
	}
	s.results = s.engine.Search(flags, query, s.store)
	return s.results
}

// Results returns the latest search results.
func (s *Session) Results() search.Results { return s.results }

// MoveDown advances the search cursor.
func (s *Session) MoveDown() int { return s.results.MoveDown() }

// MoveUp moves the search cursor back.
func (s *Session) MoveUp() int { return s.results.MoveUp() }

// OpenSelected opens the selected search result and returns its key and
// the byte range to highlight.
func (s *Session) OpenSelected() (key string, start, end int, err error) {
	sel := s.results.Selected()
	if sel == nil {
		return "", 0, 0, ErrNoSelection
	}
	if _, err := s.Open(sel.Key); err != nil {
		return sel.Key, 0, 0, err
	}
	return sel.Key, sel.Start, sel.End, nil
}

// ChangeDir closes the open file, saves everything, then switches the
// store to dir and loads it. If saving or loading fails the store stays on
// the old root.
func (s *Session) ChangeDir(dir string) error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := s.store.SaveAll(); err != nil {
		return err
	}
	prev := s.store.Root()
	s.store.ChangeRoot(dir)
	s.results = nil
	if err := s.store.Load(); err != nil {
		s.store.ChangeRoot(prev)
		if rerr := s.store.Load(); rerr != nil {
			s.logger.Error("reloading previous root failed", "root", prev, "error", rerr)
		}
		return err
	}
	s.view.DataDir = s.store.Root()
	s.view.SetLastOpen("")
	return nil
}

// SetBackground records the background image path.
func (s *Session) SetBackground(path string) { s.view.SetBackground(path) }

// SetTheme records the theme name.
func (s *Session) SetTheme(name string) {
	if name == "" {
		name = state.DefaultTheme
	}
	s.view.Theme = name
}

// Restore reopens the last open file if it is still in the store.
func (s *Session) Restore() (string, error) {
	last := s.view.LastOpen()
	if last == "" || !s.store.Contains(last) {
		return "", nil
	}
	if _, err := s.Open(last); err != nil {
		return "", err
	}
	return last, nil
}

// Shutdown closes the open file, saves everything and writes the view
// state to statePath. The view state still names the file that was open,
// so Restore can reopen it next time.
func (s *Session) Shutdown(statePath string) error {
	closeErr := s.Close()
	saveErr := s.store.SaveAll()
	stateErr := s.view.Save(statePath)
	if err := errors.Join(closeErr, saveErr, stateErr); err != nil {
		s.logger.Error("shutdown incomplete", "error", err)
		return err
	}
	s.logger.Info("shutdown")
	return nil
}
