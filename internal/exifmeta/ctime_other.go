//go:build !(linux || darwin || freebsd)

package exifmeta

import (
	"io/fs"
	"time"
)

func creationTime(_ string, info fs.FileInfo) (time.Time, error) {
	return info.ModTime(), nil
}
