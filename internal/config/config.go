package config

import (
	"fmt"
	"os"
	"path/filepath"

	serr "scenefuse/internal/errors"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Duplicate policies for files resolving to the same scene and layer.
const (
	DuplicatesReject = "reject" // Fail the grouping with an ambiguous layer error
	DuplicatesLast   = "last"   // Keep the lexically last path
)

// Config represents the tool configuration.
// It selects the import definition and controls grouping, export, organize
// and watch behaviour.
type Config struct {
	Definition     string   `yaml:"definition"`      // Import definition XML file; empty uses the built-in template
	DefinitionName string   `yaml:"definition_name"` // ImportDefinition to use; empty selects the first
	Include        []string `yaml:"include"`         // Glob patterns for file names considered at all
	Output         string   `yaml:"output"`          // Directory for exported .afi files; empty writes next to the scan root
	Settings       struct {
		Duplicates      string `yaml:"duplicates"`        // reject or last
		DryRun          bool   `yaml:"dry_run"`           // If true, organize only plans moves
		CreateDirs      bool   `yaml:"create_dirs"`       // Create destination directories
		Backup          bool   `yaml:"backup"`            // Back up files before overwriting them
		Collision       string `yaml:"collision"`         // Collision strategy: rename, skip, or overwrite
		IMCChannelNames bool   `yaml:"imc_channel_names"` // Rewrite IMC text headers such as 80ArAr(ArAr80Di)
	} `yaml:"settings"`
	WatchMode struct {
		Interval int `yaml:"interval"` // Seconds of quiet before regrouping
	} `yaml:"watch_mode"`
}

// DefaultPath returns ~/.config/scenefuse/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scenefuse", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location. A missing file
// yields the default configuration.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfigFile(path)
	if serr.IsConfigNotFound(err) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// LoadConfigFile loads configuration from a specific file path. A missing
// file is a ConfigNotFound error.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewConfigError("config file not found", path, serr.ConfigNotFound, err)
		}
		return nil, serr.Wrap(err, "error reading config file")
	}

	// Keys missing from the file keep their default values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, serr.Wrap(err, "error parsing config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, serr.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Include = []string{"*.{tif,tiff,TIF,TIFF}"}

	cfg.Settings.Duplicates = DuplicatesReject
	cfg.Settings.DryRun = true
	cfg.Settings.CreateDirs = true
	cfg.Settings.Backup = false
	cfg.Settings.Collision = "rename"
	cfg.Settings.IMCChannelNames = false

	cfg.WatchMode.Interval = 2
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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
func (c *Config) Validate() error {
	if c == nil {
		return serr.NewConfigError("nil config", "", serr.InvalidConfig, nil)
	}

	switch c.Settings.Duplicates {
	case DuplicatesReject, DuplicatesLast:
	default:
		return serr.NewConfigError("invalid duplicates setting", c.Settings.Duplicates, serr.InvalidConfig, nil)
	}

	validCollisions := map[string]bool{"rename": true, "skip": true, "overwrite": true}
	if !validCollisions[c.Settings.Collision] {
		return serr.NewConfigError("invalid collision setting", c.Settings.Collision, serr.InvalidConfig, nil)
	}

	if c.WatchMode.Interval < 1 {
		return serr.NewConfigError("watch interval must be >= 1 second", "watch_mode.interval", serr.InvalidConfig, nil)
	}

	if len(c.Include) == 0 {
		return serr.NewConfigError("at least one include pattern is required", "include", serr.InvalidConfig, nil)
	}
	for i, pattern := range c.Include {
		if pattern == "" {
			return serr.NewConfigError(fmt.Sprintf("include %d: pattern is empty", i), "include", serr.InvalidConfig, nil)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return serr.NewConfigError(fmt.Sprintf("include %d: bad glob", i), pattern, serr.InvalidConfig, err)
		}
	}

	if c.Definition != "" {
		if _, err := os.Stat(c.Definition); err != nil {
			return serr.NewConfigError("error accessing definition file", c.Definition, serr.InvalidConfig, err)
		}
	}

	return nil
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Settings.DryRun = false
	cfg.Settings.Backup = true
	cfg.WatchMode.Interval = 1
	return cfg
}
