package config

import (
	"fmt"
	"os"
	"path/filepath"

	"twinpane/internal/errors"
	"twinpane/pkg/types"

	"gopkg.in/yaml.v3"
)

// Collision strategies accepted by operations.collision
const (
	CollisionAsk       = "ask"
	CollisionOverwrite = "overwrite"
	CollisionSkip      = "skip"
	CollisionRename    = "rename"
)

// Config represents the application configuration structure.
// It holds panel defaults, file operation policy and presentation settings.
type Config struct {
	Panels struct {
		Left           string `yaml:"left"`            // Starting directory of the left panel
		Right          string `yaml:"right"`           // Starting directory of the right panel
		ShowHidden     bool   `yaml:"show_hidden"`     // Show dot files and hidden entries
		SortKey        string `yaml:"sort_key"`        // name, size, date or ext
		SortDescending bool   `yaml:"sort_descending"` // Reverse the sort key order
		RememberPaths  bool   `yaml:"remember_paths"`  // Save panel paths on exit
	} `yaml:"panels"`
	Operations struct {
		Collision         string `yaml:"collision"`          // Collision strategy: ask, overwrite, skip or rename
		ConfirmOperations bool   `yaml:"confirm_operations"` // Ask before copy and move
		ConfirmDelete     bool   `yaml:"confirm_delete"`     // Ask before every delete
		RecoverableDelete bool   `yaml:"recoverable_delete"` // Keep deleted entries in the holding area so delete can be undone
		BackupOverwritten bool   `yaml:"backup_overwritten"` // Keep overwritten destinations so copy and move can be undone
		HoldingDir        string `yaml:"holding_dir"`        // Holding area location (default under the user cache dir)
		UndoLimit         int    `yaml:"undo_limit"`         // Number of operations kept for undo
		BufferSizeKB      int    `yaml:"buffer_size_kb"`     // Copy chunk size; cancellation is checked between chunks
	} `yaml:"operations"`
	Programs struct {
		Editor string `yaml:"editor"` // Editor for F4 (falls back to $EDITOR)
		Viewer string `yaml:"viewer"` // Pager for F3 (falls back to $PAGER)
	} `yaml:"programs"`
	Watch struct {
		Enabled bool `yaml:"enabled"` // Refresh panels when their directory changes
	} `yaml:"watch"`
	Log struct {
		File  string `yaml:"file"`  // Log file; empty disables logging in the TUI
		Level string `yaml:"level"` // Minimum level: debug, info, warn, error
		Debug bool   `yaml:"debug"` // Emit debug lines
		JSON  bool   `yaml:"json"`  // Write JSON lines instead of text
	} `yaml:"log"`
	Theme struct {
		Name      string `yaml:"name"`      // Theme name (default, dark, light, etc.)
		Primary   string `yaml:"primary"`   // Active panel border and titles
		Border    string `yaml:"border"`    // Inactive panel border
		Cursor    string `yaml:"cursor"`    // Cursor row background
		Selected  string `yaml:"selected"`  // Selected entries
		Directory string `yaml:"directory"` // Directory names
		Hidden    string `yaml:"hidden"`    // Hidden entries
		Success   string `yaml:"success"`   // Success message color
		Warning   string `yaml:"warning"`   // Warning message color
		Error     string `yaml:"error"`     // Error message color
	} `yaml:"theme"`
}

// DefaultPath returns the default config location
// (~/.config/twinpane/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "twinpane", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal over the defaults so unset keys keep them
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// A theme name without explicit colors selects the predefined palette
	var themeOnly struct {
		Theme struct {
			Name    string `yaml:"name"`
			Primary string `yaml:"primary"`
		} `yaml:"theme"`
	}
	if err := yaml.Unmarshal(data, &themeOnly); err == nil {
		if themeOnly.Theme.Name != "" && themeOnly.Theme.Primary == "" {
			cfg.ApplyTheme(themeOnly.Theme.Name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg.Panels.Left = wd
	cfg.Panels.Right = wd
	cfg.Panels.ShowHidden = false
	cfg.Panels.SortKey = types.SortByName.String()
	cfg.Panels.RememberPaths = true

	cfg.Operations.Collision = CollisionAsk
	cfg.Operations.ConfirmOperations = true
	cfg.Operations.ConfirmDelete = true
	cfg.Operations.RecoverableDelete = false // Permanent delete unless opted in
	cfg.Operations.BackupOverwritten = true
	cfg.Operations.UndoLimit = 20
	cfg.Operations.BufferSizeKB = 256

	cfg.Log.Level = "info"

	cfg.ApplyTheme("default")
	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	validCollisions := map[string]bool{
		CollisionAsk:       true,
		CollisionOverwrite: true,
		CollisionSkip:      true,
		CollisionRename:    true,
	}
	if !validCollisions[c.Operations.Collision] {
		return errors.NewConfigError("invalid collision setting", c.Operations.Collision, errors.InvalidConfig, nil)
	}

	if _, err := types.ParseSortKey(c.Panels.SortKey); err != nil {
		return errors.NewConfigError("invalid sort key", "panels.sort_key", errors.InvalidConfig, err)
	}

	if c.Operations.UndoLimit < 1 || c.Operations.UndoLimit > 1000 {
		return errors.NewConfigError("undo limit must be between 1 and 1000", "operations.undo_limit", errors.InvalidConfig, nil)
	}

	if c.Operations.BufferSizeKB < 4 {
		return errors.NewConfigError("buffer size must be >= 4 KB", "operations.buffer_size_kb", errors.InvalidConfig, nil)
	}

	if c.Operations.HoldingDir != "" && !filepath.IsAbs(c.Operations.HoldingDir) {
		return errors.NewConfigError("holding dir must be absolute", "operations.holding_dir", errors.InvalidConfig, nil)
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return errors.NewConfigError("invalid log level", "log.level", errors.InvalidConfig, nil)
	}

	return nil
}

// SortKey returns the configured sort key
func (c *Config) SortKey() types.SortKey {
	key, err := types.ParseSortKey(c.Panels.SortKey)
	if err != nil {
		return types.SortByName
	}
	return key
}

// HoldingDir returns the holding area location, resolving the default.
func (c *Config) HoldingDir() string {
	if c.Operations.HoldingDir != "" {
		return c.Operations.HoldingDir
	}
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "twinpane", "holding")
	}
	return filepath.Join(os.TempDir(), "twinpane-holding")
}

// BufferSize returns the copy chunk size in bytes
func (c *Config) BufferSize() int {
	return c.Operations.BufferSizeKB * 1024
}

// Editor returns the editor command, falling back to $EDITOR then vi
func (c *Config) Editor() string {
	if c.Programs.Editor != "" {
		return c.Programs.Editor
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

// Viewer returns the pager command, falling back to $PAGER then less
func (c *Config) Viewer() string {
	if c.Programs.Viewer != "" {
		return c.Programs.Viewer
	}
	if env := os.Getenv("PAGER"); env != "" {
		return env
	}
	return "less"
}

// NewTestConfig creates a configuration instance for testing purposes.
// Nothing asks for confirmation and conflicts are renamed.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Operations.Collision = CollisionRename
	cfg.Operations.ConfirmOperations = false
	cfg.Operations.ConfirmDelete = false
	cfg.Operations.RecoverableDelete = true
	cfg.Operations.BufferSizeKB = 4
	cfg.Panels.RememberPaths = false
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":   "213", // Purple
			"border":    "240", // Grey
			"cursor":    "62",  // Indigo
			"selected":  "220", // Yellow
			"directory": "39",  // Blue
			"hidden":    "243", // Dim grey
			"success":   "114", // Green
			"warning":   "214", // Orange
			"error":     "196", // Red
		},
		"dark": {
			"primary":   "105",
			"border":    "236",
			"cursor":    "24",
			"selected":  "214",
			"directory": "33",
			"hidden":    "239",
			"success":   "78",
			"warning":   "214",
			"error":     "160",
		},
		"light": {
			"primary":   "135",
			"border":    "250",
			"cursor":    "153",
			"selected":  "166",
			"directory": "25",
			"hidden":    "247",
			"success":   "28",
			"warning":   "172",
			"error":     "160",
		},
		"monochrome": {
			"primary":   "255",
			"border":    "245",
			"cursor":    "240",
			"selected":  "255",
			"directory": "252",
			"hidden":    "242",
			"success":   "252",
			"warning":   "250",
			"error":     "255",
		},
		"commander": {
			"primary":   "51",  // Cyan
			"border":    "27",  // Blue
			"cursor":    "30",  // Teal
			"selected":  "226", // Bright yellow
			"directory": "231", // White
			"hidden":    "67",
			"success":   "46",
			"warning":   "226",
			"error":     "196",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme in the configuration.
// It updates the theme colors based on the theme name.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Border = theme["border"]
	c.Theme.Cursor = theme["cursor"]
	c.Theme.Selected = theme["selected"]
	c.Theme.Directory = theme["directory"]
	c.Theme.Hidden = theme["hidden"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome", "commander"}
}
