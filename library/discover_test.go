package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("# "+name), 0644))
	}
}

func rels(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Rel
	}
	return out
}

func TestListMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.md", "a.md", "sub/c.md", "sub/deeper/d.MD", "notes.txt", ".hidden.md", ".git/x.md", "img/a.png")

	docs, err := ListMarkdown(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md", "sub/c.md", "sub/deeper/d.MD"}, rels(docs))
	assert.Equal(t, filepath.Join(root, "sub", "c.md"), docs[2].Path)
}

func TestListMarkdownErrors(t *testing.T) {
	_, err := ListMarkdown(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "f.md")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = ListMarkdown(file)
	assert.Error(t, err)
}

func TestDiscoverHonorsIndex(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.md", "b.md", "c.md", "sub/d.md")
	index := `{"entries": ["sub/d.md", "gone.md", "` + filepath.ToSlash(filepath.Join(root, "b.md")) + `", "sub/d.md"]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, IndexFileName), []byte(index), 0644))

	docs, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/d.md", "b.md", "a.md", "c.md"}, rels(docs))
}

func TestDiscoverIgnoresMalformedIndex(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.md", "a.md")
	require.NoError(t, os.WriteFile(filepath.Join(root, IndexFileName), []byte("{"), 0644))

	docs, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, rels(docs))
}

func TestGenerateIndex(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "z.md", "guide/intro.md")

	idx, err := GenerateIndex(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"guide/intro.md", "z.md"}, idx.Entries)

	loaded, err := LoadIndex(root)
	require.NoError(t, err)
	assert.Equal(t, idx, loaded)

	_, err = GenerateIndex("relative")
	assert.ErrorIs(t, err, ErrNotAbsolute)
}

func TestLoadIndexMissing(t *testing.T) {
	idx, err := LoadIndex(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, idx)
}
