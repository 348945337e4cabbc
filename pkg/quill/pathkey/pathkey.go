// Package pathkey normalizes and validates the slash-delimited relative keys
// that identify documents in a quill store.
package pathkey

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Separator is the key segment separator, independent of the host OS.
const Separator = "/"

// ErrInvalidKey is returned when a key cannot name a file under the root.
var ErrInvalidKey = errors.New("invalid key")

// Normalize converts s into canonical key form: backslashes become slashes,
// leading and trailing slashes are stripped and repeated slashes collapse.
// Whitespace inside segments is preserved ("new file 1" is a valid key).
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\\", Separator)
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", Separator)
	}
	s = strings.TrimPrefix(s, Separator)
	return strings.TrimSuffix(s, Separator)
}

// Validate reports whether key is a usable store key.
func Validate(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, Separator) {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidKey, key)
	}
	for _, seg := range Split(key) {
		switch strings.TrimSpace(seg) {
		case "":
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, key)
		case ".", "..":
			return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, key, seg)
		}
	}
	return nil
}

// Split returns the segments of key.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, Separator)
}

// Join joins segments with the key separator, skipping empty ones.
func Join(segs ...string) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}

// Base returns the last segment of key.
func Base(key string) string {
	if i := strings.LastIndex(key, Separator); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Dir returns everything before the last segment, or "" for top-level keys.
func Dir(key string) string {
	if i := strings.LastIndex(key, Separator); i >= 0 {
		return key[:i]
	}
	return ""
}

// Prefixes returns every ancestor folder of key, shortest first.
// Prefixes("a/b/c.txt") is ["a", "a/b"].
func Prefixes(key string) []string {
	segs := Split(key)
	if len(segs) < 2 {
		return nil
	}
	out := make([]string, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		out = append(out, strings.Join(segs[:i], Separator))
	}
	return out
}

// FromPath converts a filesystem path under root into a key.
func FromPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("%w: %q is not under %q", ErrInvalidKey, path, root)
	}
	return filepath.ToSlash(rel), nil
}

// ToPath converts key into a filesystem path under root.
func ToPath(root, key string) string {
	return filepath.Join(root, filepath.FromSlash(key))
}
