// Package archive packs a document folder into a single portable file and
// restores it. Two container formats are supported: zip (the ".mdlz" format)
// and tar compressed with xz. Both carry a manifest with a BLAKE3 digest per
// file that is checked on unpack.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mdviewer/log"
)

// Extension is the file extension of saved archives.
const Extension = ".mdlz"

var (
	// ErrCorrupt is returned when an archive cannot be read or fails its
	// manifest check.
	ErrCorrupt = errors.New("corrupt archive")
	// ErrUnknownFormat is returned when the archive magic bytes match no
	// supported container.
	ErrUnknownFormat = errors.New("unknown archive format")
)

// Format is an archive container format.
type Format string

const (
	// FormatZip is a deflate-compressed zip archive.
	FormatZip Format = "zip"
	// FormatTarXz is a tar archive compressed with xz/LZMA2.
	FormatTarXz Format = "tar.xz"
)

// ParseFormat maps a configuration value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zip", "mdlz":
		return FormatZip, nil
	case "tar.xz", "txz", "xz":
		return FormatTarXz, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// PackOptions configures Pack.
type PackOptions struct {
	// Format is the container format. Defaults to zip.
	Format Format
}

// DefaultPackOptions returns the default pack options.
func DefaultPackOptions() *PackOptions {
	return &PackOptions{Format: FormatZip}
}

var (
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
	xzMagic       = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectFormat identifies the container format from the leading bytes.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic), bytes.HasPrefix(data, zipEmptyMagic):
		return FormatZip, nil
	case bytes.HasPrefix(data, xzMagic):
		return FormatTarXz, nil
	default:
		return "", ErrUnknownFormat
	}
}

// file is one regular file collected from the source folder.
type file struct {
	name string // slash-separated, relative to the folder
	data []byte
	mode fs.FileMode
}

var (
	filepathWalkDir = filepath.WalkDir
	osReadFile      = os.ReadFile
)

// collect reads every regular file under folder in lexical order.
func collect(folder string) ([]file, error) {
	var files []file
	err := filepathWalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if name == manifestName {
			log.WarningLog.Printf("archive: skipping reserved file %s", path)
			return nil
		}
		data, err := osReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, file{name: name, data: data, mode: info.Mode().Perm()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// Pack writes every regular file under folder to w, preserving paths
// relative to folder.
func Pack(folder string, w io.Writer, opts *PackOptions) (*Manifest, error) {
	if opts == nil {
		opts = DefaultPackOptions()
	}
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a folder: %s", folder)
	}

	files, err := collect(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}
	manifest := newManifest(opts.Format, files)
	manifestData, err := manifest.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}

	switch opts.Format {
	case FormatTarXz:
		err = writeTarXz(w, manifestData, files)
	case FormatZip, "":
		err = writeZip(w, manifestData, files)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// Unpack extracts an archive into dest, creating it if needed. Entries that
// would land outside dest are skipped. When the archive carries a manifest,
// every listed file must be present with a matching digest; nothing is
// written to dest unless the archive verifies.
func Unpack(data []byte, dest string) (*Manifest, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	type entry struct {
		target  string
		content []byte
	}
	var (
		manifest *Manifest
		entries  []entry
		read     = make(map[string][]byte)
	)
	sink := func(name string, content []byte) error {
		if name == manifestName {
			m, err := ParseManifest(content)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			manifest = m
			return nil
		}
		target, ok := safeJoin(dest, name)
		if !ok {
			log.WarningLog.Printf("archive: skipping entry outside destination: %s", name)
			return nil
		}
		entries = append(entries, entry{target: target, content: content})
		read[name] = content
		return nil
	}

	switch format {
	case FormatZip:
		err = readZip(data, sink)
	case FormatTarXz:
		err = readTarXz(data, sink)
	}
	if err != nil {
		return nil, err
	}
	if manifest != nil {
		if err := manifest.Verify(read); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}
	for _, e := range entries {
		if err := os.MkdirAll(filepath.Dir(e.target), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := os.WriteFile(e.target, e.content, 0644); err != nil {
			return nil, fmt.Errorf("failed to write file: %w", err)
		}
	}

	if manifest == nil {
		// Archives written by older tools have no manifest.
		return newManifest(format, nil), nil
	}
	return manifest, nil
}

// safeJoin resolves an archive entry name under dest. It reports false for
// absolute names and names that escape dest.
func safeJoin(dest, name string) (string, bool) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	if vol := filepath.VolumeName(clean); vol != "" {
		return "", false
	}
	return filepath.Join(dest, clean), true
}

// PackFile packs folder into a new archive file at archivePath.
func PackFile(folder, archivePath string, opts *PackOptions) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	var buf bytes.Buffer
	m, err := Pack(folder, &buf, opts)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(archivePath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	log.InfoLog.Printf("archive: packed %s -> %s (%d files)", folder, archivePath, len(m.Files))
	return m, nil
}

// UnpackFile extracts the archive at archivePath into dest.
func UnpackFile(archivePath, dest string) (*Manifest, error) {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	m, err := Unpack(data, dest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archivePath, err)
	}
	log.InfoLog.Printf("archive: extracted %s -> %s", archivePath, dest)
	return m, nil
}

// UnpackToTemp extracts the archive into a new temporary directory and
// returns its path. The caller owns the directory.
func UnpackToTemp(archivePath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	dir, err := os.MkdirTemp("", "mdviewer-"+base+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	if _, err := UnpackFile(archivePath, dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// IsArchive reports whether path has the saved archive extension.
func IsArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// CopyTree copies every regular file under src into dest by packing and
// unpacking in memory, so the copy is checked against the manifest.
func CopyTree(src, dest string) error {
	var buf bytes.Buffer
	if _, err := Pack(src, &buf, DefaultPackOptions()); err != nil {
		return err
	}
	_, err := Unpack(buf.Bytes(), dest)
	return err
}
