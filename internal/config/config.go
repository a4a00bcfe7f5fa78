package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the editor configuration, loaded from a single TOML file.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Editor  EditorConfig  `toml:"editor"`
	Undo    UndoConfig    `toml:"undo"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination. Empty discards all output.
	File string `toml:"file"`
}

// EditorConfig controls the document shell.
type EditorConfig struct {
	// RootName is the document root edits go to.
	RootName string `toml:"root_name"`

	// TabWidth is the display width of a tab.
	TabWidth int `toml:"tab_width"`
}

// UndoConfig controls the undo machinery.
type UndoConfig struct {
	// RestoreSelection re-applies the recorded selection after each undo
	// or redo step.
	RestoreSelection bool `toml:"restore_selection"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Editor:  EditorConfig{RootName: "main", TabWidth: 4},
		Undo:    UndoConfig{RestoreSelection: true},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidValue, c.Logging.Level)
	}
	if c.Editor.RootName == "" {
		return fmt.Errorf("%w: editor.root_name must not be empty", ErrInvalidValue)
	}
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("%w: editor.tab_width %d", ErrInvalidValue, c.Editor.TabWidth)
	}
	return nil
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "treedoc.toml"
	}
	return filepath.Join(dir, "treedoc", "config.toml")
}
