package archive

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// manifestName is the reserved archive entry holding the Manifest.
const manifestName = ".mdlz-manifest.json"

const manifestVersion = 1

// Entry describes one archived file.
type Entry struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	BLAKE3 string `json:"blake3"`
}

// Manifest lists the files of an archive with their digests.
type Manifest struct {
	Version int     `json:"version"`
	Format  Format  `json:"format"`
	Files   []Entry `json:"files"`
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func newManifest(format Format, files []file) *Manifest {
	if format == "" {
		format = FormatZip
	}
	m := &Manifest{Version: manifestVersion, Format: format, Files: make([]Entry, 0, len(files))}
	for _, f := range files {
		m.Files = append(m.Files, Entry{Path: f.name, Size: int64(len(f.data)), BLAKE3: digest(f.data)})
	}
	return m
}

// ToJSON serializes the manifest.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest decodes a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Version > manifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// TotalSize is the sum of all file sizes in bytes.
func (m *Manifest) TotalSize() int64 {
	var n int64
	for _, e := range m.Files {
		n += e.Size
	}
	return n
}

// Verify checks that every listed file was extracted with a matching digest.
func (m *Manifest) Verify(files map[string][]byte) error {
	for _, e := range m.Files {
		data, ok := files[e.Path]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrCorrupt, e.Path)
		}
		if int64(len(data)) != e.Size || digest(data) != e.BLAKE3 {
			return fmt.Errorf("%w: checksum mismatch for %s", ErrCorrupt, e.Path)
		}
	}
	return nil
}
