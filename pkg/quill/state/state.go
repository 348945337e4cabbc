// Package state persists the small view-state file that carries session
// preferences (data directory, last open file, background image, theme)
// from one run to the next.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultTheme is the theme used when none has been chosen.
const DefaultTheme = "Default"

// DefaultDataDir is the data directory used when none is configured.
const DefaultDataDir = "cache"

// ErrMalformed is returned when the state file exists but cannot be parsed.
var ErrMalformed = errors.New("malformed state file")

// State is the persisted view state. Nullable fields are pointers so they
// round-trip as JSON null.
type State struct {
	DataDir             string  `json:"data_dir"`
	BackgroundImagePath *string `json:"background_image_path"`
	LastOpenFile        *string `json:"last_open_file"`
	Theme               string  `json:"theme"`
}

// Defaults returns the state used when no file exists. An empty dataDir
// falls back to DefaultDataDir.
func Defaults(dataDir string) State {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return State{DataDir: dataDir, Theme: DefaultTheme}
}

// DefaultPath returns $XDG_STATE_HOME/quill/state.json.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "quill", "state.json")
}

// Load reads the state file at path. A missing file yields defaults; fields
// absent from the file keep their default values.
func Load(path string, defaults State) (State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("reading state: %w", err)
	}

	st := defaults
	if err := json.Unmarshal(data, &st); err != nil {
		return defaults, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	if st.Theme == "" {
		st.Theme = DefaultTheme
	}
	return st, nil
}

// Save writes the whole state to path through a temporary file and rename.
func (s State) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming state: %w", err)
	}
	return nil
}

// LastOpen returns the last open file key, or "".
func (s State) LastOpen() string { return deref(s.LastOpenFile) }

// Background returns the background image path, or "".
func (s State) Background() string { return deref(s.BackgroundImagePath) }

// SetLastOpen records key as the last open file; "" clears it.
func (s *State) SetLastOpen(key string) { s.LastOpenFile = ref(key) }

// SetBackground records the background image path; "" clears it.
func (s *State) SetBackground(path string) { s.BackgroundImagePath = ref(path) }

func ref(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
