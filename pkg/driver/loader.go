package driver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kudryavchik/semantic/pkg/term"
)

// Bundle is a loaded set of term documents. Documents keep manifest order;
// Entry points into Documents.
type Bundle struct {
	Name      string
	Dir       string
	Documents []*term.Document
	Entry     *term.Document
}

// Loader materializes bundles from directories or git repositories.
type Loader struct {
	log *slog.Logger
}

// NewLoader constructs a loader. A nil logger falls back to slog.Default.
func NewLoader(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{log: log}
}

// LoadDir reads the manifest at dir and decodes every listed document.
func (l *Loader) LoadDir(dir string) (*Bundle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("driver: resolve %s: %w", dir, err)
	}
	manifest, err := LoadManifest(filepath.Join(abs, ManifestName))
	if err != nil {
		return nil, err
	}
	l.log.Debug("loading bundle", "name", manifest.Name, "dir", abs, "documents", len(manifest.Documents))

	bundle := &Bundle{Name: manifest.Name, Dir: abs}
	for _, file := range manifest.Documents {
		path := filepath.Join(abs, filepath.FromSlash(file))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("driver: read document %s: %w", file, err)
		}
		doc, err := term.DecodeDocument(data)
		if err != nil {
			return nil, fmt.Errorf("driver: document %s: %w", file, err)
		}
		if doc.Name == "" {
			doc.Name = file
		}
		bundle.Documents = append(bundle.Documents, doc)
		if file == manifest.Entry {
			bundle.Entry = doc
		}
		l.log.Debug("decoded document", "file", file, "name", doc.Name, "terms", len(doc.Terms))
	}
	if bundle.Entry == nil {
		bundle.Entry = bundle.Documents[len(bundle.Documents)-1]
	}
	return bundle, nil
}
