package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Classifications) != 6 {
		t.Errorf("expected 6 default classifications, got %d", len(cfg.Classifications))
	}
	if cfg.ActivityThresholdDays != 90 {
		t.Errorf("expected activity threshold 90, got %d", cfg.ActivityThresholdDays)
	}
	if cfg.MinInteractions != 1 {
		t.Errorf("expected min interactions 1, got %d", cfg.MinInteractions)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected cache TTL 5m, got %v", cfg.CacheTTL)
	}
	if cfg.Canvas.Width != 1280 || cfg.Canvas.Height != 800 {
		t.Errorf("expected 1280x800 canvas, got %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.ActivityThresholdDays != 90 {
		t.Errorf("expected default config, got threshold %d", cfg.ActivityThresholdDays)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
classifications:
  - Champion
  - Detractor

activity_threshold_days: 30
min_interactions: 3
cache_ttl: 2m

canvas:
  width: 1920
  height: 1080

layout_seed: 42
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Classifications) != 2 {
		t.Fatalf("expected 2 classifications, got %d", len(cfg.Classifications))
	}
	if cfg.Classifications[0] != "Champion" {
		t.Errorf("expected first classification 'Champion', got %q", cfg.Classifications[0])
	}
	if cfg.ActivityThresholdDays != 30 {
		t.Errorf("expected activity_threshold_days 30, got %d", cfg.ActivityThresholdDays)
	}
	if cfg.MinInteractions != 3 {
		t.Errorf("expected min_interactions 3, got %d", cfg.MinInteractions)
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Errorf("expected cache_ttl 2m, got %v", cfg.CacheTTL)
	}
	if cfg.Canvas.Width != 1920 || cfg.Canvas.Height != 1080 {
		t.Errorf("expected 1920x1080 canvas, got %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.LayoutSeed != 42 {
		t.Errorf("expected layout_seed 42, got %d", cfg.LayoutSeed)
	}
}

func TestLoadFrom_PartialConfigBackfills(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "min_interactions: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MinInteractions != 5 {
		t.Errorf("expected min_interactions 5, got %d", cfg.MinInteractions)
	}
	if cfg.ActivityThresholdDays != 90 {
		t.Errorf("expected backfilled threshold 90, got %d", cfg.ActivityThresholdDays)
	}
	if len(cfg.Classifications) != 6 {
		t.Errorf("expected backfilled classifications, got %d", len(cfg.Classifications))
	}
	if cfg.Canvas.Width != 1280 {
		t.Errorf("expected backfilled canvas width, got %d", cfg.Canvas.Width)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{not valid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.MinInteractions = 7
	cfg.LayoutSeed = 99

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.MinInteractions != 7 {
		t.Errorf("expected min_interactions 7 after round trip, got %d", loaded.MinInteractions)
	}
	if loaded.LayoutSeed != 99 {
		t.Errorf("expected layout_seed 99 after round trip, got %d", loaded.LayoutSeed)
	}
}

func TestConfigDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	if got := ConfigDir(); got != "/tmp/xdgtest/relmap" {
		t.Errorf("expected /tmp/xdgtest/relmap, got %q", got)
	}
}
