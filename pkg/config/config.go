// Package config handles loading and saving relmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/relmap/config.yaml
//   - State:   ~/.local/state/relmap/ (per-root view state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CanvasConfig holds the headless export surface size.
type CanvasConfig struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// Config is the top-level viewer configuration. Every field has a built-in
// default, so a missing or unreadable config file is never fatal.
type Config struct {
	// Classifications is the badge set shown in the filter bar, in order.
	Classifications []string `yaml:"classifications,omitempty"`

	// ActivityThresholdDays bounds how far back the provider looks for
	// interactions when loading a graph.
	ActivityThresholdDays int `yaml:"activity_threshold_days,omitempty"`

	// MinInteractions is the default interaction-count floor for nodes.
	MinInteractions int `yaml:"min_interactions,omitempty"`

	// CacheTTL is how long a loaded payload stays fresh before a refresh
	// bypasses the provider cache.
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`

	Canvas CanvasConfig `yaml:"canvas,omitempty"`

	// LayoutSeed makes cluster detection and initial scatter reproducible.
	// Zero seeds from the graph itself.
	LayoutSeed int64 `yaml:"layout_seed,omitempty"`
}

// DefaultConfig returns a Config with built-in defaults. These apply whenever
// the config file or the provider's config fetch is unavailable.
func DefaultConfig() Config {
	return Config{
		Classifications: []string{
			"Champion", "Decision Maker", "Influencer",
			"Gatekeeper", "Detractor", "Neutral",
		},
		ActivityThresholdDays: 90,
		MinInteractions:       1,
		CacheTTL:              5 * time.Minute,
		Canvas:                CanvasConfig{Width: 1280, Height: 800},
	}
}

// ConfigDir returns the XDG config directory for relmap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "relmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "relmap")
}

// StateDir returns the XDG state directory for relmap.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "relmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "relmap")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// normalize backfills zero values with defaults so partial config files work.
func (c *Config) normalize() {
	def := DefaultConfig()
	if len(c.Classifications) == 0 {
		c.Classifications = def.Classifications
	}
	if c.ActivityThresholdDays <= 0 {
		c.ActivityThresholdDays = def.ActivityThresholdDays
	}
	if c.MinInteractions < 0 {
		c.MinInteractions = def.MinInteractions
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = def.Canvas.Width
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = def.Canvas.Height
	}
}
