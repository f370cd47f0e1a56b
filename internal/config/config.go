// Package config reads the optional codemodel.toml at the project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is looked up at the project root.
const FileName = "codemodel.toml"

// DefaultModelDir holds instance.json/schema.json when model_dir is unset.
const DefaultModelDir = ".codemodel"

// Config carries the scan and freshness settings a project can pin down.
type Config struct {
	Exclude  []string `toml:"exclude"`
	Include  []string `toml:"include"`
	ModelDir string   `toml:"model_dir"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Exclude:  []string{"node_modules", "dist", "build", "coverage"},
		ModelDir: DefaultModelDir,
	}
}

// Load reads codemodel.toml under root. A missing file yields the
// defaults; a malformed file is an error.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = DefaultModelDir
	}
	return cfg, nil
}

// ModelPath resolves the model directory against the project root.
func (c *Config) ModelPath(root string) string {
	if filepath.IsAbs(c.ModelDir) {
		return c.ModelDir
	}
	return filepath.Join(root, c.ModelDir)
}
