// Package library tracks the document folders a user has opened and the
// archives they have saved, and discovers the documents inside a folder.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"mdviewer/log"
)

// Data is the on-disk shape of library.json.
type Data struct {
	Folders []string `json:"folders"`
}

// Library is a library.json file. Every mutation reads and rewrites the whole
// file.
type Library struct {
	path string
}

// Open returns the library stored at path. The file is created on first
// write.
func Open(path string) *Library {
	return &Library{path: path}
}

// Path returns the location of library.json.
func (l *Library) Path() string {
	return l.path
}

// Load reads the library. A missing file is an empty library.
func (l *Library) Load() (*Data, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Data{Folders: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse library %s: %w", l.path, err)
	}
	if d.Folders == nil {
		d.Folders = []string{}
	}
	return &d, nil
}

func (l *Library) save(d *Data) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}
	return os.WriteFile(l.path, data, 0644)
}

// Folders returns the library folders in insertion order.
func (l *Library) Folders() ([]string, error) {
	d, err := l.Load()
	if err != nil {
		return nil, err
	}
	return d.Folders, nil
}

// Add appends folder unless it is already present. It reports whether the
// library changed.
func (l *Library) Add(folder string) (bool, error) {
	if !filepath.IsAbs(folder) {
		return false, fmt.Errorf("%w: %s", ErrNotAbsolute, folder)
	}
	d, err := l.Load()
	if err != nil {
		return false, err
	}
	folder = filepath.Clean(folder)
	if slices.Contains(d.Folders, folder) {
		return false, nil
	}
	d.Folders = append(d.Folders, folder)
	if err := l.save(d); err != nil {
		return false, err
	}
	log.InfoLog.Printf("library: added %s", folder)
	return true, nil
}

// Remove deletes folder from the library.
func (l *Library) Remove(folder string) error {
	d, err := l.Load()
	if err != nil {
		return err
	}
	i := slices.Index(d.Folders, folder)
	if i < 0 {
		return nil
	}
	d.Folders = slices.Delete(d.Folders, i, i+1)
	return l.save(d)
}

// Prune removes folders that no longer exist and returns them. The file is
// only rewritten when something was removed.
func (l *Library) Prune() ([]string, error) {
	d, err := l.Load()
	if err != nil {
		return nil, err
	}
	var kept, removed []string
	for _, f := range d.Folders {
		if info, err := os.Stat(f); err == nil && info.IsDir() {
			kept = append(kept, f)
			continue
		}
		removed = append(removed, f)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if kept == nil {
		kept = []string{}
	}
	d.Folders = kept
	if err := l.save(d); err != nil {
		return nil, err
	}
	log.InfoLog.Printf("library: pruned %d missing folders", len(removed))
	return removed, nil
}
