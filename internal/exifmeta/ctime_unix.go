//go:build linux || darwin || freebsd

package exifmeta

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// creationTime reports the inode change time, the closest thing to a
// creation time these platforms expose through stat.
func creationTime(path string, info fs.FileInfo) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime(), nil
	}
	sec, nsec := st.Ctim.Unix()
	return time.Unix(sec, nsec), nil
}
