// Package driver loads term bundles from disk or git and evaluates them with
// a chosen domain.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the bundle descriptor file at the root of every bundle.
const ManifestName = "bundle.yaml"

// Manifest models the bundle.yaml contents.
type Manifest struct {
	Path      string
	Name      string
	Documents []string
	Entry     string
}

type manifestDisk struct {
	Name      string   `yaml:"name"`
	Documents []string `yaml:"documents"`
	Entry     string   `yaml:"entry,omitempty"`
}

// LoadManifest parses bundle.yaml from disk.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}

	manifest := &Manifest{
		Path:      abs,
		Name:      strings.TrimSpace(raw.Name),
		Entry:     strings.TrimSpace(raw.Entry),
		Documents: make([]string, 0, len(raw.Documents)),
	}
	for _, doc := range raw.Documents {
		doc = strings.TrimSpace(doc)
		if doc != "" {
			manifest.Documents = append(manifest.Documents, doc)
		}
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest: %s: missing bundle name", m.Path)
	}
	if len(m.Documents) == 0 {
		return fmt.Errorf("manifest: %s: no documents listed", m.Path)
	}
	if m.Entry == "" {
		m.Entry = m.Documents[len(m.Documents)-1]
		return nil
	}
	for _, doc := range m.Documents {
		if doc == m.Entry {
			return nil
		}
	}
	return fmt.Errorf("manifest: %s: entry %q is not a listed document", m.Path, m.Entry)
}
