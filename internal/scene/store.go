package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound means no scene file exists under the given name.
	ErrNotFound = errors.New("scene not found")
	// ErrInvalidFormat means the scene file exists but failed to decode or
	// validate (schema mismatch, malformed timing, bad step payloads).
	ErrInvalidFormat = errors.New("invalid scene format")
)

// Store owns the on-disk scene layout: one YAML file per scene in dir.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// the first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file path a scene name maps to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Load reads and validates a scene by name.
func (s *Store) Load(name string) (*Scene, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("could not read scene %s: %w", name, err)
	}

	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, name, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, name, err)
	}
	return &sc, nil
}

// Save writes a scene atomically: encode to a temp file in the same
// directory, then rename over the target. A crash mid-write never corrupts
// the last good copy.
func (s *Store) Save(sc *Scene) error {
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("could not create scene directory: %w", err)
	}

	data, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("could not encode scene: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+sc.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not write scene: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not write scene: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(sc.Name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not replace scene file: %w", err)
	}
	return nil
}

// List returns the names of all stored scenes, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read scene directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a scene file.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("could not remove scene %s: %w", name, err)
	}
	return nil
}
