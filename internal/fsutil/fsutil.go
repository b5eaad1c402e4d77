// Package fsutil holds the file operations the sorter performs on the
// destination tree.
package fsutil

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// renameFunc is swapped in tests to simulate EXDEV.
var renameFunc = os.Rename

// =============================================================================
// Copy
// =============================================================================

// CopyFile copies src to dst byte for byte, then carries over the permission
// bits and modification time. An existing dst is never overwritten: the call
// fails with an error matching fs.ErrExist.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	// Metadata is best-effort; some filesystems reject chmod/chtimes.
	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// =============================================================================
// Move
// =============================================================================

// Move renames src to dst, falling back to copy and remove when the two paths
// are on different devices.
func Move(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if !isEXDEV(err) {
			return err
		}
		if err := CopyFile(src, dst); err != nil {
			return fmt.Errorf("cross-device copy: %w", err)
		}
		return os.Remove(src)
	}
	return nil
}

func isEXDEV(err error) bool {
	var le *os.LinkError
	if errors.As(err, &le) {
		return errors.Is(le.Err, syscall.EXDEV)
	}
	return errors.Is(err, syscall.EXDEV)
}

// Exists reports whether anything is present at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// =============================================================================
// Cleanup
// =============================================================================

// RemoveEmptyDirs removes every directory under root that holds no entries at
// all, deepest first. Hidden files count as entries. root itself is kept.
// Returns the number of directories removed.
func RemoveEmptyDirs(root string) (int, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Children sort after their parents, so reverse order visits leaves first.
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, err
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// =============================================================================
// Hashing
// =============================================================================

// PartialHash returns the MD5 of the first 64KB of a file, or "" when the
// file cannot be read.
func PartialHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyN(h, f, 64*1024); err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
