package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndexDir != filepath.Join(home, ".checkline", "index") {
		t.Fatalf("unexpected index dir: %q", cfg.IndexDir)
	}
	if cfg.Timezone != "Europe/London" || cfg.TopK != 12 || cfg.MinScore != 0.30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ReadsYAMLAndExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".checkline")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "index_dir: ~/custom/index\ntimezone: UTC\ntop_k: 5\nmin_score: 0.5\n"
	if err := os.WriteFile(filepath.Join(dir, "checkline.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndexDir != filepath.Join(home, "custom", "index") {
		t.Fatalf("~ not expanded: %q", cfg.IndexDir)
	}
	if cfg.Timezone != "UTC" || cfg.TopK != 5 || cfg.MinScore != 0.5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_PartialConfigBackfillsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".checkline")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "checkline.yaml"), []byte("timezone: UTC\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndexDir != filepath.Join(dir, "index") {
		t.Fatalf("index dir not defaulted: %q", cfg.IndexDir)
	}
	if cfg.TopK != 12 || cfg.MinScore != 0.30 {
		t.Fatalf("limits not defaulted: %+v", cfg)
	}
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".checkline")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "checkline.yaml"), []byte("index_dir: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	want := &Config{
		IndexDir:       "/tmp/idx",
		Timezone:       "UTC",
		TopK:           3,
		MinScore:       0.42,
		PreferredTypes: []string{"Opening_Check"},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.IndexDir != want.IndexDir || got.Timezone != want.Timezone ||
		got.TopK != want.TopK || got.MinScore != want.MinScore {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if len(got.PreferredTypes) != 1 || got.PreferredTypes[0] != "Opening_Check" {
		t.Fatalf("preferred types did not round-trip: %v", got.PreferredTypes)
	}
}
