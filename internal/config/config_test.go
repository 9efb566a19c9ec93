package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Assembly.Epsilon != 1e-5 {
		t.Errorf("expected epsilon 1e-5, got %g", cfg.Assembly.Epsilon)
	}
	if cfg.Assembly.CheckRange != 64 {
		t.Errorf("expected check_range 64, got %d", cfg.Assembly.CheckRange)
	}
	if cfg.Assembly.MaxVerts != 65535 {
		t.Errorf("expected max_verts 65535, got %d", cfg.Assembly.MaxVerts)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `graphics:
  width: 800
  height: 600
assembly:
  epsilon: 0.001
  check_range: 16
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Graphics.Width != 800 || cfg.Graphics.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Assembly.Epsilon != 0.001 {
		t.Errorf("epsilon = %g, want 0.001", cfg.Assembly.Epsilon)
	}
	if cfg.Assembly.CheckRange != 16 {
		t.Errorf("check_range = %d, want 16", cfg.Assembly.CheckRange)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}

	// Values not present in the file keep their defaults.
	if cfg.Assembly.MaxVerts != 65535 {
		t.Errorf("max_verts = %d, want default 65535", cfg.Assembly.MaxVerts)
	}
	if !cfg.Graphics.VSync {
		t.Error("vsync should keep its default")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	src := Default()
	src.Graphics.Width = 1024
	src.Assembly.Epsilon = 0.5
	if err := src.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	dst := Default()
	if err := loadFromFile(dst, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}
	if dst.Graphics.Width != 1024 {
		t.Errorf("width = %d, want 1024", dst.Graphics.Width)
	}
	if dst.Assembly.Epsilon != 0.5 {
		t.Errorf("epsilon = %g, want 0.5", dst.Assembly.Epsilon)
	}
}
