package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/quill/pkg/quill/logging"
	"github.com/jamesainslie/quill/pkg/quill/trash"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	MaxSize    string            `mapstructure:"max_size"`
	MaxBackups int               `mapstructure:"max_backups"`
	Components map[string]string `mapstructure:"components"`
}

// SearchConfig configures the search engine.
type SearchConfig struct {
	Context int `mapstructure:"context"`
}

// Config represents the application configuration.
type Config struct {
	DataDir     string        `mapstructure:"data_dir"`
	StatePath   string        `mapstructure:"state_path"`
	NewFileName string        `mapstructure:"new_file_name"`
	Exclude     []string      `mapstructure:"exclude"`
	Images      []string      `mapstructure:"images"`
	DeleteMode  string        `mapstructure:"delete_mode"`
	Workers     int           `mapstructure:"workers"`
	Search      SearchConfig  `mapstructure:"search"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load reads configuration. With an empty path the file is looked up as
// config.yaml in ConfigDir and a missing file means defaults; an explicit
// path must exist. QUILL_ environment variables override the file
// (QUILL_DATA_DIR, QUILL_SEARCH_CONTEXT, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.DataDir, err = ExpandPath(cfg.DataDir); err != nil {
		return nil, err
	}
	if cfg.StatePath, err = ExpandPath(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("state_path", DefaultStatePath())
	v.SetDefault("new_file_name", DefaultNewFileName)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("images", DefaultImages)
	v.SetDefault("delete_mode", DefaultDeleteMode)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("search.context", DefaultSearchContext)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logging.components", map[string]string{
		"store":   "info",
		"search":  "info",
		"session": "info",
		"watcher": "warn",
		"cli":     "info",
	})
}

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks values that Load cannot coerce.
func (c *Config) Validate() error {
	if _, err := trash.ParseMode(c.DeleteMode); err != nil {
		return fmt.Errorf("%w: delete_mode: %w", ErrInvalid, err)
	}
	if c.Search.Context < 0 {
		return fmt.Errorf("%w: search.context must not be negative", ErrInvalid)
	}
	if strings.TrimSpace(c.NewFileName) == "" {
		return fmt.Errorf("%w: new_file_name is empty", ErrInvalid)
	}
	if _, err := c.Logging.maxSize(); err != nil {
		return fmt.Errorf("%w: logging.max_size: %w", ErrInvalid, err)
	}
	return nil
}

// Mode returns the parsed delete mode.
func (c *Config) Mode() trash.Mode {
	m, _ := trash.ParseMode(c.DeleteMode)
	return m
}

func (l LoggingConfig) maxSize() (int64, error) {
	if l.MaxSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(l.MaxSize)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// LogConfig converts the logging section for logging.Init. consoleLevel
// mirrors logs to stderr when non-empty.
func (c *Config) LogConfig(consoleLevel string) logging.Config {
	size, _ := c.Logging.maxSize()
	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		MaxSize:      size,
		MaxBackups:   c.Logging.MaxBackups,
		Components:   c.Logging.Components,
		ConsoleLevel: consoleLevel,
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/quill, falling back to ~/.config/quill.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName)
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDataDir returns $XDG_DATA_HOME/quill/notes.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName, "notes")
}

// DefaultStatePath returns $XDG_STATE_HOME/quill/state.json.
func DefaultStatePath() string {
	return filepath.Join(xdg.StateHome, AppName, "state.json")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// WriteDefault writes a commented default config to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# quill configuration

# Directory holding your notes
data_dir: %s

# View state (last open file, theme, background)
state_path: %s

# Base name for new files; "new file 1", "new file 2", ... when taken
new_file_name: %s

# Files and directories skipped when loading (glob patterns)
exclude:
  - .git
  - .DS_Store
  - "*.swp"

# Extensions treated as images
images: [png, jpg, jpeg, gif, bmp, webp]

# How deleted notes are disposed of: remove or trash
delete_mode: %s

# Directory walk workers
workers: %d

search:
  # Bytes of context either side of a match
  context: %d

logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/quill/quill.log)
  path: ""
  max_size: %s
  max_backups: %d
  components:
    watcher: warn
`, DefaultDataDir(), DefaultStatePath(), DefaultNewFileName, DefaultDeleteMode,
		DefaultWorkers, DefaultSearchContext, DefaultLogMaxSize, DefaultLogMaxBackups)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}
