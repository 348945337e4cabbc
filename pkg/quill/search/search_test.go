package search_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/jamesainslie/quill/pkg/quill/search"
	"github.com/jamesainslie/quill/pkg/quill/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource is an in-memory Source. Keys mapped to an error are unreadable.
type memSource struct {
	files  map[string]string
	broken map[string]error
}

func (m memSource) Keys() []string {
	var keys []string
	for k := range m.files {
		keys = append(keys, k)
	}
	for k := range m.broken {
		keys = append(keys, k)
	}
	return keys
}

func (m memSource) Contents(key string) (string, error) {
	if err, ok := m.broken[key]; ok {
		return "???", err
	}
	return m.files[key], nil
}

var both = search.Flags{MatchName: true, MatchContents: true}

func TestSnippet(t *testing.T) {
	t.Run("ellipses on both sides", func(t *testing.T) {
		src := memSource{files: map[string]string{"k": "xxxxxxxxxxhelloxxxxxxxxxx"}}
		rs := search.NewEngine(8).Search(search.Flags{MatchContents: true}, "hello", src)

		require.Len(t, rs, 1)
		assert.Equal(t, "...xxxxxxxxhelloxxxxxxxx...", rs[0].Snippet)
		assert.Equal(t, 10, rs[0].Start)
		assert.Equal(t, 15, rs[0].End)
	})

	t.Run("exactly the context available", func(t *testing.T) {
		got := search.Snippet("xxxxxxxxhelloxxxxxxxx", 8, 13, 8)
		assert.Equal(t, "xxxxxxxxhelloxxxxxxxx", got)
	})

	t.Run("clamped at the start", func(t *testing.T) {
		got := search.Snippet("hello world and more text", 0, 5, 8)
		assert.Equal(t, "hello world a...", got)
	})

	t.Run("newlines are escaped", func(t *testing.T) {
		got := search.Snippet("one\ntwo\nthree", 4, 7, 3)
		assert.Equal(t, `...ne\ntwo\nth...`, got)
	})

	t.Run("never splits a rune", func(t *testing.T) {
		// Byte 2 is the middle of "é"; the window grows to include all of it.
		got := search.Snippet("héllo wörld", 3, 4, 1)
		assert.Equal(t, "...éll...", got)
	})
}

func TestSearchOrdering(t *testing.T) {
	src := memSource{files: map[string]string{
		"b/todo.md": "nothing here",
		"a/todo.md": "remember the todo list",
		"c.md":      "todo",
	}}
	rs := search.NewEngine(0).Search(both, "todo", src)

	got := make([]string, len(rs))
	for i, r := range rs {
		kind := "name"
		if r.Contents {
			kind = "contents"
		}
		got[i] = r.Key + ":" + kind
	}
	assert.Equal(t, []string{
		"a/todo.md:contents",
		"a/todo.md:name",
		"b/todo.md:name",
		"c.md:contents",
	}, got)

	assert.Equal(t, 0, rs.SelectedIndex())
	for _, r := range rs[1:] {
		assert.False(t, r.Selected)
	}
	assert.Zero(t, rs[1].Start)
	assert.Zero(t, rs[1].End)
	assert.Empty(t, rs[1].Snippet)
}

func TestSearchModes(t *testing.T) {
	src := memSource{files: map[string]string{"Notes.md": "Meeting at 10:30 with Bob"}}
	e := search.NewEngine(search.DefaultContext)

	t.Run("case-insensitive by default", func(t *testing.T) {
		rs := e.Search(both, "bob", src)
		require.Len(t, rs, 1)
		assert.Equal(t, "Bob", "Meeting at 10:30 with Bob"[rs[0].Start:rs[0].End])
	})

	t.Run("match case", func(t *testing.T) {
		rs := e.Search(search.Flags{MatchContents: true, MatchCase: true}, "bob", src)
		assert.Empty(t, rs)
	})

	t.Run("literal query is not a pattern", func(t *testing.T) {
		assert.Empty(t, e.Search(both, "10.30", src))
		assert.Len(t, e.Search(both, "10:30", src), 1)
	})

	t.Run("regex", func(t *testing.T) {
		rs := e.Search(search.Flags{MatchContents: true, UseRegex: true}, `\d+:\d+`, src)
		require.Len(t, rs, 1)
		assert.Equal(t, 11, rs[0].Start)
		assert.Equal(t, 16, rs[0].End)
	})

	t.Run("invalid regex matches nothing", func(t *testing.T) {
		assert.Empty(t, e.Search(search.Flags{MatchName: true, MatchContents: true, UseRegex: true}, "(unclosed", src))
	})

	t.Run("name only", func(t *testing.T) {
		rs := e.Search(search.Flags{MatchName: true}, "notes", src)
		require.Len(t, rs, 1)
		assert.True(t, rs[0].Name)
		assert.False(t, rs[0].Contents)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Empty(t, e.Search(both, "", src))
	})
}

func TestSearchSkipsUnreadable(t *testing.T) {
	src := memSource{
		files:  map[string]string{"ok.md": "needle"},
		broken: map[string]error{"needle.png": errors.New("not text")},
	}
	rs := search.NewEngine(8).Search(both, "needle", src)

	require.Len(t, rs, 2)
	assert.Equal(t, "needle.png", rs[0].Key)
	assert.True(t, rs[0].Name)
	assert.Equal(t, "ok.md", rs[1].Key)
	assert.True(t, rs[1].Contents)
}

func TestSearchStore(t *testing.T) {
	s := store.New(t.TempDir(), store.WithImageExtensions("png"))
	require.NoError(t, s.Insert("diary/monday.md", "rain all day"))
	require.NoError(t, s.Insert("diary/tuesday.md", "sun"))

	rs := search.NewEngine(8).Search(search.Flags{MatchContents: true}, "RAIN", s)
	require.Len(t, rs, 1)
	assert.Equal(t, "diary/monday.md", rs[0].Key)
	assert.Equal(t, "rain all day", rs[0].Snippet)
}

func TestCursor(t *testing.T) {
	mk := func(selected int) search.Results {
		rs := make(search.Results, 3)
		for i := range rs {
			rs[i].Key = string(rune('a' + i))
		}
		if selected >= 0 {
			rs[selected].Selected = true
		}
		return rs
	}

	t.Run("moves down", func(t *testing.T) {
		rs := mk(1)
		assert.Equal(t, 2, rs.MoveDown())
		assert.False(t, rs[1].Selected)
		assert.True(t, rs[2].Selected)
	})

	t.Run("wraps from last to first", func(t *testing.T) {
		rs := mk(2)
		assert.Equal(t, 0, rs.MoveDown())
		assert.True(t, rs[0].Selected)
		assert.False(t, rs[2].Selected)
	})

	t.Run("moves up and wraps", func(t *testing.T) {
		rs := mk(0)
		assert.Equal(t, 2, rs.MoveUp())
		assert.Equal(t, "c", rs.Selected().Key)
	})

	t.Run("nothing selected is a pass-through", func(t *testing.T) {
		rs := mk(-1)
		assert.Equal(t, 0, rs.MoveDown())
		assert.Nil(t, rs.Selected())
		assert.False(t, slices.ContainsFunc(rs, func(r search.Result) bool { return r.Selected }))
	})

	t.Run("empty results", func(t *testing.T) {
		var rs search.Results
		assert.Equal(t, 0, rs.MoveDown())
		assert.Equal(t, 0, rs.MoveUp())
	})
}
