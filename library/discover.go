package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mdviewer/log"
)

// IndexFileName is the optional per-folder document order.
const IndexFileName = "index.json"

// Index is the on-disk shape of index.json. Entries may be absolute or
// relative to the folder.
type Index struct {
	Entries []string `json:"entries"`
}

// Document is a Markdown file found in a folder.
type Document struct {
	// Path is absolute.
	Path string
	// Rel is slash-separated and relative to the folder; used as the tab label.
	Rel string
}

// ListMarkdown returns every *.md file under folder sorted by relative path.
// Hidden files and directories are skipped.
func ListMarkdown(folder string) ([]Document, error) {
	folder, err := filepath.Abs(folder)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to open folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a folder: %s", folder)
	}

	var docs []Document
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != folder && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		docs = append(docs, Document{Path: path, Rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", folder, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Rel < docs[j].Rel })
	return docs, nil
}

// LoadIndex reads folder/index.json. It returns nil without error when the
// folder has no index.
func LoadIndex(folder string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(folder, IndexFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IndexFileName, err)
	}
	return &idx, nil
}

// Discover lists the documents of folder. When folder has an index.json its
// entries come first in index order; entries that no longer exist are
// skipped and unlisted documents follow sorted by path. A malformed index is
// logged and ignored.
func Discover(folder string) ([]Document, error) {
	docs, err := ListMarkdown(folder)
	if err != nil {
		return nil, err
	}
	abs, _ := filepath.Abs(folder)
	idx, err := LoadIndex(abs)
	if err != nil {
		log.WarningLog.Printf("library: ignoring index in %s: %v", abs, err)
		return docs, nil
	}
	if idx == nil {
		return docs, nil
	}

	byPath := make(map[string]Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
	}
	ordered := make([]Document, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, entry := range idx.Entries {
		p := filepath.FromSlash(entry)
		if !filepath.IsAbs(p) {
			p = filepath.Join(abs, p)
		}
		p = filepath.Clean(p)
		d, ok := byPath[p]
		if !ok || seen[p] {
			continue
		}
		ordered = append(ordered, d)
		seen[p] = true
	}
	for _, d := range docs {
		if !seen[d.Path] {
			ordered = append(ordered, d)
		}
	}
	return ordered, nil
}

// GenerateIndex writes folder/index.json listing every document in path
// order, replacing any existing index.
func GenerateIndex(folder string) (*Index, error) {
	if !filepath.IsAbs(folder) {
		return nil, fmt.Errorf("%w: %s", ErrNotAbsolute, folder)
	}
	docs, err := ListMarkdown(folder)
	if err != nil {
		return nil, err
	}
	idx := &Index{Entries: make([]string, 0, len(docs))}
	for _, d := range docs {
		idx.Entries = append(idx.Entries, d.Rel)
	}
	data, err := json.MarshalIndent(idx, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	path := filepath.Join(folder, IndexFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	log.InfoLog.Printf("library: wrote %s", path)
	return idx, nil
}
