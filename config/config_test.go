package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Screen.Width <= 0 || cfg.Screen.Height <= 0 {
		t.Errorf("screen = %dx%d, want positive defaults", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Scripts.Dir == "" {
		t.Error("default script dir is empty")
	}
	if cfg.Game.TimeScale != 1.0 {
		t.Errorf("time scale = %v, want 1.0", cfg.Game.TimeScale)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := []byte("screen:\n  width: 640\n  height: 360\ngame:\n  seed: 42\n")
	if err := os.WriteFile(path, user, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Screen.Width != 640 || cfg.Screen.Height != 360 {
		t.Errorf("screen = %dx%d, want 640x360", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Game.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Game.Seed)
	}
	// Fields absent from the user file keep their defaults.
	if cfg.Screen.TargetFPS <= 0 {
		t.Error("target fps lost its default")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("no/such/config.yaml"); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestDerivedVirtualDefaultsToScreen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := []byte("screen:\n  width: 800\n  height: 600\n  virtual_width: 0\n  virtual_height: 0\n")
	if err := os.WriteFile(path, user, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.VirtualW32 != 800 || cfg.Derived.VirtualH32 != 600 {
		t.Errorf("virtual = %vx%v, want 800x600",
			cfg.Derived.VirtualW32, cfg.Derived.VirtualH32)
	}
}

func TestDerivedClampsBadGameValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := []byte("game:\n  time_scale: -1\n  fixed_dt: 0\n  max_dt: -5\n")
	if err := os.WriteFile(path, user, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Game.TimeScale != 1.0 {
		t.Errorf("time scale = %v, want fallback 1.0", cfg.Game.TimeScale)
	}
	if cfg.Derived.FixedDT32 <= 0 {
		t.Error("fixed dt not clamped to a positive value")
	}
	if cfg.Derived.MaxDT32 != 0.25 {
		t.Errorf("max dt = %v, want fallback 0.25", cfg.Derived.MaxDT32)
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Screen.Title = "roundtrip"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Screen.Title != "roundtrip" {
		t.Errorf("title = %q, want roundtrip", back.Screen.Title)
	}
}
