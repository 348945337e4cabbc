package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/quill/pkg/quill/config"
	"github.com/jamesainslie/quill/pkg/quill/trash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDataDir(), cfg.DataDir)
	assert.Equal(t, config.DefaultStatePath(), cfg.StatePath)
	assert.Equal(t, config.DefaultNewFileName, cfg.NewFileName)
	assert.Equal(t, config.DefaultSearchContext, cfg.Search.Context)
	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
	assert.Equal(t, config.DefaultExclusions, cfg.Exclude)
	assert.Equal(t, config.DefaultImages, cfg.Images)
	assert.Equal(t, trash.ModeRemove, cfg.Mode())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "warn", cfg.Logging.Components["watcher"])
}

func TestLoad_FromConfigDir(t *testing.T) {
	home := isolate(t)
	writeConfig(t, filepath.Join(home, ".config", "quill", "config.yaml"), `
data_dir: ~/notes
new_file_name: untitled
delete_mode: trash
search:
  context: 20
exclude:
  - node_modules
`)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes"), cfg.DataDir)
	assert.Equal(t, "untitled", cfg.NewFileName)
	assert.Equal(t, trash.ModeTrash, cfg.Mode())
	assert.Equal(t, 20, cfg.Search.Context)
	assert.Equal(t, []string{"node_modules"}, cfg.Exclude)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)
	xdgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgDir)
	writeConfig(t, filepath.Join(xdgDir, "quill", "config.yaml"), "workers: 9\n")

	assert.Equal(t, filepath.Join(xdgDir, "quill"), config.ConfigDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)

	t.Run("reads the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeConfig(t, path, "new_file_name: scratch\n")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "scratch", cfg.NewFileName)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("QUILL_NEW_FILE_NAME", "from env")
	t.Setenv("QUILL_SEARCH_CONTEXT", "3")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from env", cfg.NewFileName)
	assert.Equal(t, 3, cfg.Search.Context)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"delete mode", "delete_mode: shred\n"},
		{"negative context", "search:\n  context: -1\n"},
		{"empty new file name", "new_file_name: \"  \"\n"},
		{"log size", "logging:\n  max_size: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeConfig(t, path, tt.content)

			_, err := config.Load(path)
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLogConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "logging:\n  level: debug\n  max_size: 1MB\n  max_backups: 2\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	lc := cfg.LogConfig("warn")
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, int64(1000000), lc.MaxSize)
	assert.Equal(t, 2, lc.MaxBackups)
	assert.Equal(t, "warn", lc.ConsoleLevel)
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := config.ExpandPath("~/notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), got)

	got, err = config.ExpandPath("/abs/notes")
	require.NoError(t, err)
	assert.Equal(t, "/abs/notes", got)
}

func TestWriteDefault(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "quill", "config.yaml")

	written, err := config.WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, written)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultNewFileName, cfg.NewFileName)
	assert.Equal(t, config.DefaultExclusions, cfg.Exclude)

	t.Run("existing file is kept", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))

		written, err := config.WriteDefault(path)
		require.NoError(t, err)
		assert.False(t, written)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "workers: 2\n", string(data))
	})
}
