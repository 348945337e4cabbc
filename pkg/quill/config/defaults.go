// Package config loads quill's configuration from a YAML file, QUILL_
// environment variables and built-in defaults.
package config

// Default configuration values.
const (
	// AppName names the XDG subdirectories quill uses.
	AppName = "quill"

	// DefaultNewFileName is the base key for new files.
	DefaultNewFileName = "new file"

	// DefaultSearchContext is the snippet context in bytes.
	DefaultSearchContext = 8

	// DefaultDeleteMode unlinks deleted notes permanently.
	DefaultDeleteMode = "remove"

	// DefaultWorkers is the directory walk concurrency.
	DefaultWorkers = 4

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "5MB"

	// DefaultLogMaxBackups is the number of rotated logs kept.
	DefaultLogMaxBackups = 3
)

// DefaultExclusions are skipped when loading a notes directory.
var DefaultExclusions = []string{
	".git",
	".DS_Store",
	"*.swp",
}

// DefaultImages are the extensions loaded as image entries.
var DefaultImages = []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"}
