package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the file types LoadFile accepts.
var SupportedExtensions = []string{".md", ".markdown", ".txt"}

// IsSupported reports whether path has an ingestible extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DocumentID derives a stable identifier from path relative to root, so
// re-ingesting a file replaces its previous chunks.
func DocumentID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") || rel == "." {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
}

// LoadFile reads path into a copy of tmpl. The ID comes from DocumentID and
// the title from the first markdown heading unless tmpl sets one.
func LoadFile(root, path string, tmpl Document) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := tmpl
	doc.ID = DocumentID(root, path)
	doc.Text = string(data)
	if doc.Title == "" {
		doc.Title = markdownTitle(doc.Text)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// LoadDir loads every supported file under root.
func LoadDir(root string, tmpl Document) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSupported(path) {
			return nil
		}
		doc, err := LoadFile(root, path, tmpl)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func markdownTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
		return ""
	}
	return ""
}
