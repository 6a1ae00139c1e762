package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryAddDeduplicates(t *testing.T) {
	lib := Open(filepath.Join(t.TempDir(), "data", "library.json"))

	folders, err := lib.Folders()
	require.NoError(t, err)
	assert.Empty(t, folders)

	a, b := t.TempDir(), t.TempDir()
	changed, err := lib.Add(a)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = lib.Add(a + string(filepath.Separator))
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = lib.Add(b)
	require.NoError(t, err)

	folders, err = lib.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, folders)
}

func TestLibraryAddRejectsRelative(t *testing.T) {
	lib := Open(filepath.Join(t.TempDir(), "library.json"))
	_, err := lib.Add("docs")
	assert.ErrorIs(t, err, ErrNotAbsolute)
}

func TestLibraryFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	lib := Open(path)
	dir := t.TempDir()
	_, err := lib.Add(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"folders": [`+quote(dir)+`]}`, string(data))
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestLibraryPrune(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	keep := t.TempDir()
	gone := filepath.Join(t.TempDir(), "deleted")
	require.NoError(t, os.WriteFile(path, []byte(`{"folders": [`+quote(gone)+`, `+quote(keep)+`]}`), 0644))

	lib := Open(path)
	removed, err := lib.Prune()
	require.NoError(t, err)
	assert.Equal(t, []string{gone}, removed)

	folders, err := lib.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, folders)

	removed, err = lib.Prune()
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestLibraryRemove(t *testing.T) {
	lib := Open(filepath.Join(t.TempDir(), "library.json"))
	a, b := t.TempDir(), t.TempDir()
	_, _ = lib.Add(a)
	_, _ = lib.Add(b)

	require.NoError(t, lib.Remove(a))
	require.NoError(t, lib.Remove("/not/there"))
	folders, err := lib.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{b}, folders)
}

func TestLibraryMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	_, err := Open(path).Folders()
	assert.Error(t, err)
}

func TestFlattenPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Windows-style absolute paths
		{`C:\Users\admin\Documents`, "C_Users_admin_Documents"},
		{"C:/Users/admin/Documents", "C_Users_admin_Documents"},
		{`C:\Users\admin\Documents\`, "C_Users_admin_Documents"},
		// Windows drive root
		{`C:\`, "C"},
		{"D:/", "D"},
		// Unix-style absolute paths
		{"/mnt/hdd1/docs", "mnt_hdd1_docs"},
		{"/mnt/hdd1/docs/", "mnt_hdd1_docs"},
		{"/", ""},
		// Mixed separators
		{`C:/Users\admin/mixed\path`, "C_Users_admin_mixed_path"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := FlattenPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFlattenPathRejectsRelative(t *testing.T) {
	for _, p := range []string{"docs", "./docs", `Users\me`, "C:docs", ""} {
		_, err := FlattenPath(p)
		assert.ErrorIs(t, err, ErrNotAbsolute, p)
	}
}
