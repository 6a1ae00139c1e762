package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"mdviewer/archive"
)

// ArchivePath returns where the archive of folder is saved under storageDir.
func ArchivePath(storageDir, folder string) (string, error) {
	name, err := FlattenPath(folder)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = "root"
	}
	return filepath.Join(storageDir, name+archive.Extension), nil
}

// SavedArchive is an archive file in the storage directory.
type SavedArchive struct {
	Path string
	Name string
	Size int64
}

// SavedArchives lists the archives in storageDir sorted by name. A missing
// directory holds no archives.
func SavedArchives(storageDir string) ([]SavedArchive, error) {
	entries, err := os.ReadDir(storageDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list storage: %w", err)
	}
	var out []SavedArchive
	for _, e := range entries {
		if e.IsDir() || !archive.IsArchive(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, SavedArchive{
			Path: filepath.Join(storageDir, e.Name()),
			Name: e.Name(),
			Size: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SaveToFile packs folder into storageDir and returns the archive path.
func SaveToFile(storageDir, folder string, opts *archive.PackOptions) (string, *archive.Manifest, error) {
	path, err := ArchivePath(storageDir, folder)
	if err != nil {
		return "", nil, err
	}
	m, err := archive.PackFile(folder, path, opts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to save %s: %w", folder, err)
	}
	return path, m, nil
}

// SaveToFolder copies folder to dest through an in-memory archive and adds
// dest to the library.
func (l *Library) SaveToFolder(folder, dest string) error {
	if !filepath.IsAbs(dest) {
		return fmt.Errorf("%w: %s", ErrNotAbsolute, dest)
	}
	if err := archive.CopyTree(folder, dest); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", folder, dest, err)
	}
	_, err := l.Add(dest)
	return err
}
