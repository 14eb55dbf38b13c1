package event

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk YAML shape: one file holds a list of
// definitions. UIDs are assigned at load time in file order, so seed
// files stay free of bookkeeping fields.
type seedFile struct {
	Events []seedEntry `yaml:"events"`
}

type seedEntry struct {
	Year  *int   `yaml:"year"`
	Month int    `yaml:"month"`
	Day   int    `yaml:"day"`
	Title string `yaml:"title"`
	Actor string `yaml:"actor"`
}

// FileSystemSeedRepository loads event definitions from *.yaml files in
// a directory. Seeds are read once at startup and used to populate an
// empty catalog — there is no hot reload.
type FileSystemSeedRepository struct {
	dir  string
	defs []*Definition
}

// NewFileSystemSeedRepository eagerly loads all seed files from dir.
// A missing directory is valid and yields zero definitions.
func NewFileSystemSeedRepository(dir string) (*FileSystemSeedRepository, error) {
	repo := &FileSystemSeedRepository{dir: dir}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemSeedRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("seed path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("read seed dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read seed file %q: %w", path, err)
		}

		var sf seedFile
		if err := yaml.Unmarshal(raw, &sf); err != nil {
			return fmt.Errorf("parse seed file %q: %w", path, err)
		}

		for i, e := range sf.Events {
			def := &Definition{
				UID:        NextUID(r.defs),
				OriginYear: e.Year,
				Month:      time.Month(e.Month),
				Day:        e.Day,
				Title:      e.Title,
				Actor:      e.Actor,
			}
			if err := def.Validate(); err != nil {
				return fmt.Errorf("seed file %q entry %d: %w", path, i, err)
			}
			r.defs = append(r.defs, def)
		}
	}

	return nil
}

// Definitions returns the loaded seed definitions in load order.
func (r *FileSystemSeedRepository) Definitions() []*Definition {
	return r.defs
}
