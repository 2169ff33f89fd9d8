// Package locator maps fully-qualified class names to the source files that
// declare them, using a reflection.toml project manifest, and resolves
// file-namespace relative names for the type resolver.
package locator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a reflection.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Index   Index   `toml:"index"`

	// Dir is the directory containing the reflection.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name      string `toml:"name"`
	Namespace string `toml:"namespace"` // root namespace mapped onto the source dirs
}

// Source configures source file locations.
type Source struct {
	Dirs       []string `toml:"dirs"`
	Extensions []string `toml:"extensions"`
}

// Index configures the persistent symbol index.
type Index struct {
	Path string `toml:"path"` // sqlite file, "" disables persistence
}

// Load parses a reflection.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "reflection.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("locator: cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("locator: parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("locator: cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if len(m.Source.Extensions) == 0 {
		m.Source.Extensions = []string{".php"}
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a reflection.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "reflection.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// IndexPath returns the absolute path of the sqlite symbol index, or "" when
// persistence is disabled.
func (m *Manifest) IndexPath() string {
	if m.Index.Path == "" {
		return ""
	}
	if filepath.IsAbs(m.Index.Path) {
		return m.Index.Path
	}
	return filepath.Join(m.Dir, m.Index.Path)
}
