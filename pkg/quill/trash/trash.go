// Package trash provides the delete backends a store can unlink notes with:
// permanent removal, or moving the file to the desktop trash so a deleted
// note can be put back.
package trash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// commandTimeout bounds each external trash command.
const commandTimeout = 10 * time.Second

// Mode selects how deleted notes are disposed of.
type Mode string

const (
	// ModeRemove unlinks files permanently.
	ModeRemove Mode = "remove"
	// ModeTrash moves files to the system trash.
	ModeTrash Mode = "trash"
)

// ErrInvalidMode is returned for an unknown delete mode.
var ErrInvalidMode = errors.New("invalid delete mode")

// ParseMode parses a delete mode. Empty means ModeRemove.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRemove:
		return ModeRemove, nil
	case ModeTrash:
		return ModeTrash, nil
	default:
		return ModeRemove, fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidMode, s, ModeRemove, ModeTrash)
	}
}

// Deleter returns the delete function for mode.
func (m Mode) Deleter() func(path string) error {
	if m == ModeTrash {
		return MoveToTrash
	}
	return os.Remove
}

// MoveToTrash moves a file to the system trash: Finder on macOS, gio or
// trash-put on Linux. Where neither is available the file is removed.
func MoveToTrash(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	switch runtime.GOOS {
	case "darwin":
		if trashMacOS(absPath) == nil {
			return nil
		}
	case "linux":
		if trashLinux(absPath) == nil {
			return nil
		}
	}
	return remove(absPath)
}

func trashMacOS(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}

func trashLinux(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if gio, err := exec.LookPath("gio"); err == nil {
		if err := exec.CommandContext(ctx, gio, "trash", path).Run(); err == nil {
			return nil
		}
	}
	if trashPut, err := exec.LookPath("trash-put"); err == nil {
		return exec.CommandContext(ctx, trashPut, path).Run()
	}
	return errors.New("no trash command available")
}

func remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}
