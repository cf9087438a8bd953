package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("regions: []\n"), 0o600))
	return path
}

func TestDiscover_EmptyArgs(t *testing.T) {
	files, err := Discovery{}.Discover(nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_FilesKeptInOrder(t *testing.T) {
	dir := t.TempDir()
	b := touch(t, filepath.Join(dir, "b.yaml"))
	a := touch(t, filepath.Join(dir, "a.txt"))

	files, err := Discovery{}.Discover([]string{b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, files)
}

func TestDiscover_Directory(t *testing.T) {
	dir := t.TempDir()
	p2 := touch(t, filepath.Join(dir, "p2.yaml"))
	p1 := touch(t, filepath.Join(dir, "p1.yml"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "p3.yaml"))

	files, err := Discovery{}.Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{p1, p2}, files)
}

func TestDiscover_Recursive(t *testing.T) {
	dir := t.TempDir()
	p1 := touch(t, filepath.Join(dir, "p1.yaml"))
	p3 := touch(t, filepath.Join(dir, "sub", "p3.yaml"))

	files, err := Discovery{Recursive: true}.Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{p1, p3}, files)
}

func TestDiscover_Patterns(t *testing.T) {
	dir := t.TempDir()
	page := touch(t, filepath.Join(dir, "0001.page.yaml"))
	touch(t, filepath.Join(dir, "0001.seg.yaml"))
	touch(t, filepath.Join(dir, "0001.rec.yaml"))

	files, err := Discovery{Include: []string{"*.page.yaml"}}.Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{page}, files)

	files, err = Discovery{Exclude: []string{"*.seg.yaml", "*.rec.yaml"}}.Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{page}, files)
}

func TestDiscover_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Discovery{}.Discover([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	touch(t, filepath.Join(dir, "notes.txt"))
	_, err = Discovery{}.Discover([]string{dir})
	assert.ErrorContains(t, err, "no page files found")
}
