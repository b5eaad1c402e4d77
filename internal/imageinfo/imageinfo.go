// Package imageinfo measures files for remainder bucketing: pixel dimensions
// from the image header and byte size from the filesystem.
package imageinfo

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF header decoder
	_ "image/jpeg" // register JPEG header decoder
	_ "image/png"  // register PNG header decoder
	"os"

	_ "golang.org/x/image/bmp"  // register BMP header decoder
	_ "golang.org/x/image/tiff" // register TIFF header decoder
	_ "golang.org/x/image/webp" // register WebP header decoder
)

// Reader implements the sorter's dimension provider.
type Reader struct{}

// PixelSize decodes only the image header and returns width and height.
func (Reader) PixelSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ByteSize returns the size of the regular file at path.
func (Reader) ByteSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size(), nil
}
