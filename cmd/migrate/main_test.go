package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDatasetFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.xlsx", "notes.md", "sub/c.csv"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := findDatasetFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "sub", "c.csv"),
	}, files)

	_, err = findDatasetFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
