package localfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMkdirAllStat(t *testing.T, fs *FS, root string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "a/b/c"), 0o755))

	info, err := fs.Stat(filepath.Join(root, "a/b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func testTempFileRename(t *testing.T, fs *FS, root string) {
	t.Helper()
	dir := filepath.Join(root, "dl")
	require.NoError(t, fs.MkdirAll(dir, 0o755))

	f, err := fs.TempFile(dir, ".part-")
	require.NoError(t, err)
	_, err = f.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dst := filepath.Join(dir, "final.bin")
	require.NoError(t, fs.Rename(f.Name(), dst))

	data, err := fs.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	exists, err := fs.Exists(f.Name())
	require.NoError(t, err)
	assert.False(t, exists)
}

func testRenameReplaces(t *testing.T, fs *FS, root string) {
	t.Helper()
	dst := filepath.Join(root, "replace.txt")
	require.NoError(t, fs.WriteFile(dst, []byte("old"), 0o644))

	f, err := fs.TempFile(root, ".part-")
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, fs.Rename(f.Name(), dst))

	data, err := fs.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func testRemove(t *testing.T, fs *FS, root string) {
	t.Helper()
	p := filepath.Join(root, "gone.txt")
	require.NoError(t, fs.WriteFile(p, []byte("x"), 0o644))
	require.NoError(t, fs.Remove(p))

	exists, err := fs.Exists(p)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, fs.Remove(p))
}

// runSuite runs a battery of consistency tests against an FS.
func runSuite(t *testing.T, fs *FS, root string) {
	t.Helper()
	testMkdirAllStat(t, fs, root)
	testTempFileRename(t, fs, root)
	testRenameReplaces(t, fs, root)
	testRemove(t, fs, root)
}

func TestInMemory_Suite(t *testing.T) {
	runSuite(t, NewInMemory(), "/")
}

func TestOS_Suite(t *testing.T) {
	runSuite(t, NewOS(), t.TempDir())
}

func TestRooted_Suite(t *testing.T) {
	runSuite(t, NewRooted(t.TempDir()), "/")
}
