package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModelDir != DefaultModelDir {
		t.Errorf("modelDir = %q", cfg.ModelDir)
	}
	found := false
	for _, e := range cfg.Exclude {
		if e == "node_modules" {
			found = true
		}
	}
	if !found {
		t.Errorf("default excludes: %v", cfg.Exclude)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `exclude = ["vendor", "gen/*"]
include = ["src/*"]
model_dir = "model"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "vendor" {
		t.Errorf("exclude: %v", cfg.Exclude)
	}
	if len(cfg.Include) != 1 || cfg.Include[0] != "src/*" {
		t.Errorf("include: %v", cfg.Include)
	}
	if cfg.ModelPath(dir) != filepath.Join(dir, "model") {
		t.Errorf("modelPath = %q", cfg.ModelPath(dir))
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("exclude = [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed config must fail")
	}
}
