// Package instance loads and saves the persisted project model:
// instance.json plus its schema.json companion. The instance file's
// modification time is the model timestamp freshness checks rely on.
package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/karowan/codemodel/internal/model"
)

const (
	// FileName is the serialized Instance.
	FileName = "instance.json"
	// SchemaFileName is the companion element-type registry. Its content
	// is opaque here; it is rewritten alongside the instance so the pair
	// stays present together.
	SchemaFileName = "schema.json"
)

// Store reads and writes one model directory.
type Store struct {
	Dir string
}

// Path returns the instance file path.
func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

// SchemaPath returns the companion schema file path.
func (s *Store) SchemaPath() string {
	return filepath.Join(s.Dir, SchemaFileName)
}

// ModTime returns the instance file's modification time, or false when no
// model has been persisted yet.
func (s *Store) ModTime() (time.Time, bool) {
	info, err := os.Stat(s.Path())
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Load reads the persisted Instance.
func (s *Store) Load() (*model.Instance, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path(), err)
	}
	var in model.Instance
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.Path(), err)
	}
	if in.Artifacts == nil {
		in.Artifacts = make(map[string]*model.ArtifactEntry)
	}
	return &in, nil
}

// Save persists the whole Instance atomically (temp file + rename) and
// rewrites the schema companion. The model is written once per update,
// never field by field.
func (s *Store) Save(in *model.Instance) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating model dir: %w", err)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding instance: %w", err)
	}
	if err := writeAtomic(s.Path(), data); err != nil {
		return err
	}

	// keep the companion present; create an empty registry if absent
	if _, err := os.Stat(s.SchemaPath()); err != nil {
		if err := writeAtomic(s.SchemaPath(), []byte("{}\n")); err != nil {
			return err
		}
	} else {
		schema, readErr := os.ReadFile(s.SchemaPath())
		if readErr != nil {
			schema = []byte("{}\n")
		}
		if err := writeAtomic(s.SchemaPath(), schema); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
