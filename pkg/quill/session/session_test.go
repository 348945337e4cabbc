package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/quill/pkg/quill/pathkey"
	"github.com/jamesainslie/quill/pkg/quill/search"
	"github.com/jamesainslie/quill/pkg/quill/session"
	"github.com/jamesainslie/quill/pkg/quill/state"
	"github.com/jamesainslie/quill/pkg/quill/store"
	"github.com/jamesainslie/quill/pkg/quill/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root string
	st   *store.Store
	view *state.State
	buf  *session.Buffer
	sess *session.Session
}

func newFixture(t *testing.T, files map[string]string, opts ...session.Option) *fixture {
	t.Helper()
	root := t.TempDir()
	for key, content := range files {
		path := pathkey.ToPath(root, key)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	st := store.New(root)
	require.NoError(t, st.Load())

	view := state.Defaults(root)
	buf := &session.Buffer{}
	return &fixture{
		root: root,
		st:   st,
		view: &view,
		buf:  buf,
		sess: session.New(st, &view, buf, opts...),
	}
}

func (f *fixture) disk(t *testing.T, key string) string {
	t.Helper()
	data, err := os.ReadFile(pathkey.ToPath(f.root, key))
	require.NoError(t, err)
	return string(data)
}

func TestNewSession(t *testing.T) {
	f := newFixture(t, nil)
	other := newFixture(t, nil)

	assert.Len(t, f.sess.ID(), 36)
	assert.NotEqual(t, f.sess.ID(), other.sess.ID())
	assert.Empty(t, f.sess.Current())
	assert.Same(t, f.st, f.sess.Store())
	assert.Same(t, f.view, f.sess.View())
}

func TestOpenFlushesPreviousBuffer(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "alpha", "b.md": "beta"})

	content, err := f.sess.Open("a.md")
	require.NoError(t, err)
	assert.Equal(t, "alpha", content)
	assert.Equal(t, "alpha", f.buf.Text())
	assert.Equal(t, "a.md", f.view.LastOpen())

	// Unchanged buffer: nothing becomes dirty.
	_, err = f.sess.Open("b.md")
	require.NoError(t, err)
	assert.Empty(t, f.st.Dirty())

	f.buf.SetText("beta edited")
	_, err = f.sess.Open("a.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, f.st.Dirty())

	got, err := f.st.Contents("b.md")
	require.NoError(t, err)
	assert.Equal(t, "beta edited", got)
}

func TestOpenMissing(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.sess.Open("nope.md")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, f.sess.Current())
}

func TestClose(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "alpha"})
	_, err := f.sess.Open("a.md")
	require.NoError(t, err)

	f.buf.SetText("changed")
	require.NoError(t, f.sess.Close())
	assert.Empty(t, f.sess.Current())
	assert.Empty(t, f.buf.Text())
	assert.Equal(t, []string{"a.md"}, f.st.Dirty())
}

func TestNewFile(t *testing.T) {
	f := newFixture(t, map[string]string{"new file": "taken"})

	key, err := f.sess.NewFile()
	require.NoError(t, err)
	assert.Equal(t, "new file 1", key)
	assert.Equal(t, key, f.sess.Current())
	assert.Empty(t, f.disk(t, key))
	assert.Empty(t, f.st.Dirty())

	key, err = f.sess.NewFile()
	require.NoError(t, err)
	assert.Equal(t, "new file 2", key)
}

func TestNewFileCustomName(t *testing.T) {
	f := newFixture(t, nil, session.WithNewFileName("/inbox//untitled"))
	key, err := f.sess.NewFile()
	require.NoError(t, err)
	assert.Equal(t, "inbox/untitled", key)
	assert.FileExists(t, filepath.Join(f.root, "inbox", "untitled"))
}

func TestEdited(t *testing.T) {
	t.Run("marks the open file dirty", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "alpha"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)

		key, err := f.sess.Edited()
		require.NoError(t, err)
		assert.Equal(t, "a.md", key)
		assert.Equal(t, []string{"a.md"}, f.st.Dirty())
	})

	t.Run("creates a file when none is open", func(t *testing.T) {
		f := newFixture(t, nil)
		f.buf.SetText("first words")

		key, err := f.sess.Edited()
		require.NoError(t, err)
		assert.Equal(t, "new file", key)
		assert.Equal(t, key, f.sess.Current())
		assert.Equal(t, "first words", f.disk(t, key))
		assert.Equal(t, "first words", f.buf.Text())
	})
}

func TestRename(t *testing.T) {
	t.Run("moves the open file on disk", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "alpha"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)
		f.buf.SetText("alpha plus")

		key, err := f.sess.Rename("//notes/renamed.md")
		require.NoError(t, err)
		assert.Equal(t, "notes/renamed.md", key)
		assert.Equal(t, key, f.sess.Current())
		assert.Equal(t, key, f.view.LastOpen())

		assert.False(t, f.st.Contains("a.md"))
		assert.NoFileExists(t, filepath.Join(f.root, "a.md"))
		assert.Equal(t, "alpha plus", f.disk(t, key))
		assert.Empty(t, f.st.Dirty())
	})

	t.Run("collision is made unique", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "a", "b.md": "b"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)

		key, err := f.sess.Rename("b.md")
		require.NoError(t, err)
		assert.Equal(t, "b.md 1", key)
		assert.Equal(t, "b", f.disk(t, "b.md"))
		assert.Equal(t, "a", f.disk(t, "b.md 1"))
	})

	t.Run("folder name is made unique", func(t *testing.T) {
		f := newFixture(t, map[string]string{"notes/x.md": "x", "a.md": "a"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)

		key, err := f.sess.Rename("notes")
		require.NoError(t, err)
		assert.Equal(t, "notes 1", key)
		assert.Equal(t, "a", f.disk(t, "notes 1"))
		assert.Equal(t, []string{"notes 1", "notes/x.md"}, f.st.Keys())
		assert.NoError(t, f.st.SaveAll())
	})

	t.Run("failed write leaves the file where it was", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "alpha", "b.md": "b"})
		// A file the store does not know about blocks the new folder.
		require.NoError(t, os.WriteFile(filepath.Join(f.root, "blocked"), nil, 0o644))
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)

		_, err = f.sess.Rename("blocked/a.md")
		assert.ErrorIs(t, err, store.ErrIO)
		assert.Equal(t, "a.md", f.sess.Current())
		assert.Equal(t, "a.md", f.view.LastOpen())
		assert.Equal(t, []string{"a.md", "b.md"}, f.st.Keys())
		assert.Empty(t, f.st.Dirty())

		require.NoError(t, f.st.Insert("b.md", "b edited"))
		require.NoError(t, f.sess.Save())
		assert.Equal(t, "b edited", f.disk(t, "b.md"))
		assert.Equal(t, "alpha", f.disk(t, "a.md"))
	})

	t.Run("needs an open file", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.sess.Rename("x.md")
		assert.ErrorIs(t, err, session.ErrNoFile)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "a"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)
		_, err = f.sess.Rename("../out.md")
		assert.ErrorIs(t, err, pathkey.ErrInvalidKey)
		assert.Equal(t, "a.md", f.sess.Current())
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "a", "b.md": "b"})
	_, err := f.sess.Open("a.md")
	require.NoError(t, err)

	require.NoError(t, f.sess.Delete("b.md"))
	assert.Equal(t, "a.md", f.sess.Current())
	assert.NoFileExists(t, filepath.Join(f.root, "b.md"))

	require.NoError(t, f.sess.Delete("a.md"))
	assert.Empty(t, f.sess.Current())
	assert.Empty(t, f.view.LastOpen())
	assert.Zero(t, f.st.Len())
	assert.NoFileExists(t, filepath.Join(f.root, "a.md"))
}

func TestTreeMarksOpenFile(t *testing.T) {
	f := newFixture(t, map[string]string{"d/a.md": "a", "d/b.md": "b"})
	_, err := f.sess.Open("d/b.md")
	require.NoError(t, err)

	nodes := f.sess.Tree()
	require.Len(t, nodes, 3)
	assert.False(t, nodes[1].Open)
	assert.True(t, nodes[2].Open)

	f.sess.ToggleFolder("d")
	nodes = f.sess.Tree()
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Collapsed)
}

func TestSearchAndOpenSelected(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.md": "the quick brown fox",
		"b.md": "a lazy fox sleeps",
	})

	_, _, _, err := f.sess.OpenSelected()
	assert.ErrorIs(t, err, session.ErrNoSelection)

	rs := f.sess.Search(search.Flags{MatchContents: true}, "fox")
	require.Len(t, rs, 2)

	assert.Equal(t, 1, f.sess.MoveDown())
	key, start, end, err := f.sess.OpenSelected()
	require.NoError(t, err)
	assert.Equal(t, "b.md", key)
	assert.Equal(t, "fox", f.buf.Text()[start:end])

	assert.Equal(t, 0, f.sess.MoveUp())
	assert.True(t, f.sess.Results()[0].Selected)
}

func TestSearchSeesUnflushedBuffer(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "old text"}, session.WithSearchContext(2))
	_, err := f.sess.Open("a.md")
	require.NoError(t, err)
	f.buf.SetText("brand new text")

	rs := f.sess.Search(search.Flags{MatchContents: true}, "new")
	require.Len(t, rs, 1)
	assert.Equal(t, "...d new t...", rs[0].Snippet)
}

func TestChangeDir(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "a"})
	_, err := f.sess.Open("a.md")
	require.NoError(t, err)
	f.buf.SetText("saved on switch")

	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "z.md"), []byte("z"), 0o644))

	require.NoError(t, f.sess.ChangeDir(other))
	assert.Equal(t, "saved on switch", f.disk(t, "a.md"))
	assert.Empty(t, f.sess.Current())
	assert.Equal(t, []string{"z.md"}, f.st.Keys())
	assert.Equal(t, other, f.view.DataDir)
	assert.Empty(t, f.sess.Results())
}

func TestChangeDirMissing(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "a"})
	err := f.sess.ChangeDir(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, store.ErrIO)
	assert.Equal(t, f.root, f.st.Root())
	assert.Equal(t, f.root, f.view.DataDir)
	assert.Equal(t, []string{"a.md"}, f.st.Keys())
}

func TestViewSettings(t *testing.T) {
	f := newFixture(t, nil)
	f.sess.SetBackground("/img/bg.png")
	f.sess.SetTheme("Solarized")
	assert.Equal(t, "/img/bg.png", f.view.Background())
	assert.Equal(t, "Solarized", f.view.Theme)

	f.sess.SetTheme("")
	assert.Equal(t, state.DefaultTheme, f.view.Theme)
}

func TestShutdownAndRestore(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "alpha"})
	statePath := filepath.Join(t.TempDir(), "state.json")

	_, err := f.sess.Open("a.md")
	require.NoError(t, err)
	f.buf.SetText("alpha final")
	require.NoError(t, f.sess.Shutdown(statePath))

	assert.Equal(t, "alpha final", f.disk(t, "a.md"))

	loadedView, err := state.Load(statePath, state.Defaults(""))
	require.NoError(t, err)
	assert.Equal(t, "a.md", loadedView.LastOpen())
	assert.Equal(t, f.root, loadedView.DataDir)

	st := store.New(loadedView.DataDir)
	require.NoError(t, st.Load())
	buf := &session.Buffer{}
	next := session.New(st, &loadedView, buf)

	key, err := next.Restore()
	require.NoError(t, err)
	assert.Equal(t, "a.md", key)
	assert.Equal(t, "alpha final", buf.Text())
}

func TestRestoreMissingFile(t *testing.T) {
	f := newFixture(t, nil)
	f.view.SetLastOpen("gone.md")
	key, err := f.sess.Restore()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestReconcile(t *testing.T) {
	t.Run("created file is tracked", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, os.WriteFile(filepath.Join(f.root, "ext.md"), []byte("x"), 0o644))
		assert.True(t, f.sess.Reconcile(watcher.Event{Key: "ext.md", Op: watcher.Created}))
		assert.True(t, f.st.Contains("ext.md"))
	})

	t.Run("modified clean file is reread", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "v1"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(f.root, "a.md"), []byte("v2"), 0o644))
		assert.True(t, f.sess.Reconcile(watcher.Event{Key: "a.md", Op: watcher.Modified}))
		assert.Equal(t, "v2", f.buf.Text())
	})

	t.Run("edited buffer wins over modification", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "v1"})
		_, err := f.sess.Open("a.md")
		require.NoError(t, err)
		f.buf.SetText("mine")

		require.NoError(t, os.WriteFile(filepath.Join(f.root, "a.md"), []byte("theirs"), 0o644))
		assert.False(t, f.sess.Reconcile(watcher.Event{Key: "a.md", Op: watcher.Modified}))
		assert.Equal(t, "mine", f.buf.Text())

		got, err := f.st.Contents("a.md")
		require.NoError(t, err)
		assert.Equal(t, "mine", got)
	})

	t.Run("removed file is forgotten unless dirty", func(t *testing.T) {
		f := newFixture(t, map[string]string{"a.md": "a", "b.md": "b"})
		require.NoError(t, f.st.Insert("b.md", "unsaved"))

		assert.True(t, f.sess.Reconcile(watcher.Event{Key: "a.md", Op: watcher.Removed}))
		assert.False(t, f.sess.Reconcile(watcher.Event{Key: "b.md", Op: watcher.Removed}))
		assert.Equal(t, []string{"b.md"}, f.st.Keys())
	})

	t.Run("removed directory drops its clean files", func(t *testing.T) {
		f := newFixture(t, map[string]string{"d/a.md": "a", "d/e/b.md": "b", "dx.md": "x"})
		_, err := f.sess.Open("d/a.md")
		require.NoError(t, err)

		assert.True(t, f.sess.Reconcile(watcher.Event{Key: "d", Op: watcher.Removed, Dir: true}))
		assert.Equal(t, []string{"dx.md"}, f.st.Keys())
		assert.Empty(t, f.sess.Current())
	})
}
