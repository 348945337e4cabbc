package trash_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/quill/pkg/quill/trash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    trash.Mode
		wantErr bool
	}{
		{"", trash.ModeRemove, false},
		{"remove", trash.ModeRemove, false},
		{" Trash ", trash.ModeTrash, false},
		{"shred", trash.ModeRemove, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := trash.ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, trash.ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoveToTrash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("bye"), 0o644))

	require.NoError(t, trash.MoveToTrash(path))
	assert.NoFileExists(t, path)
}

func TestMoveToTrashMissing(t *testing.T) {
	err := trash.MoveToTrash(filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeleter(t *testing.T) {
	for _, mode := range []trash.Mode{trash.ModeRemove, trash.ModeTrash} {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "note.md")
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

			require.NoError(t, mode.Deleter()(path))
			assert.NoFileExists(t, path)
		})
	}
}
