package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFilePreservesContentAndMtime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	require.NoError(t, os.WriteFile(src, []byte("pixels"), 0o640))

	mtime := time.Date(2019, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(got))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestCopyFileRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	err := CopyFile(src, dst)
	assert.ErrorIs(t, err, fs.ErrExist)

	got, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(got))
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	require.NoError(t, Move(src, dst))
	assert.False(t, Exists(src))
	assert.True(t, Exists(dst))
}

func TestMoveFallsBackOnCrossDevice(t *testing.T) {
	orig := renameFunc
	t.Cleanup(func() { renameFunc = orig })
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, Move(src, dst))
	assert.False(t, Exists(src))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestRemoveEmptyDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "jpg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested", "deep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hidden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "hidden", ".DS_Store"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "txt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "txt", "0.txt"), []byte("x"), 0o644))

	removed, err := RemoveEmptyDirs(root)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	assert.True(t, Exists(root))
	assert.True(t, Exists(filepath.Join(root, "txt", "0.txt")))
	assert.False(t, Exists(filepath.Join(root, "jpg")))
	assert.False(t, Exists(filepath.Join(root, "nested")))
	assert.True(t, Exists(filepath.Join(root, "hidden", ".DS_Store")), "hidden files are content")
}

func TestPartialHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))

	assert.NotEmpty(t, PartialHash(a))
	assert.Equal(t, PartialHash(a), PartialHash(b))
	assert.Empty(t, PartialHash(filepath.Join(dir, "missing")))
}
