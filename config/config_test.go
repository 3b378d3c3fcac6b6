package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Arena.Width != 1000 || cfg.Arena.Height != 800 {
		t.Errorf("arena = %vx%v, want 1000x800", cfg.Arena.Width, cfg.Arena.Height)
	}
	if cfg.Derived.ProjectileSpeed != cfg.Arena.Bullets.Speed {
		t.Errorf("projectile speed %v should default to bullet speed %v", cfg.Derived.ProjectileSpeed, cfg.Arena.Bullets.Speed)
	}
	if cfg.Derived.MaxTicks != 1800 {
		t.Errorf("MaxTicks = %d, want 1800", cfg.Derived.MaxTicks)
	}
	if cfg.Derived.TicksPerSample != 30 {
		t.Errorf("TicksPerSample = %d, want 30", cfg.Derived.TicksPerSample)
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	override := "controller:\n  projectile_speed: 650\narena:\n  asteroids:\n    count: 4\n"
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Derived.ProjectileSpeed != 650 {
		t.Errorf("ProjectileSpeed = %v, want 650", cfg.Derived.ProjectileSpeed)
	}
	if cfg.Arena.Asteroids.Count != 4 {
		t.Errorf("asteroid count = %d, want 4", cfg.Arena.Asteroids.Count)
	}
	// Untouched fields keep their defaults.
	if cfg.Arena.Asteroids.Size != 3 || cfg.Controller.MaxThrust != 480 {
		t.Errorf("defaults lost: size %d, max thrust %v", cfg.Arena.Asteroids.Size, cfg.Controller.MaxThrust)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero dt", "arena:\n  dt: 0\n"},
		{"asteroid size", "arena:\n  asteroids:\n    size: 5\n"},
		{"archive kind", "archive:\n  kind: postgres\n"},
		{"collision step", "collision:\n  step: 0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Tuner.Seeds = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Tuner.Seeds != 7 {
		t.Errorf("Seeds = %d, want 7", back.Tuner.Seeds)
	}
}

func TestRefreshRecomputesDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Arena.TimeLimit = 10
	cfg.Controller.ProjectileSpeed = 500
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if cfg.Derived.MaxTicks != 300 {
		t.Errorf("MaxTicks = %d, want 300", cfg.Derived.MaxTicks)
	}
	if cfg.Derived.ProjectileSpeed != 500 {
		t.Errorf("ProjectileSpeed = %v, want 500", cfg.Derived.ProjectileSpeed)
	}

	cfg.Arena.DT = 0
	if err := cfg.Refresh(); err == nil {
		t.Error("expected an error for dt = 0")
	}
}
