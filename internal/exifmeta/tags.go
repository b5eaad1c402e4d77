// Package exifmeta reads EXIF tags from image files and resolves a single
// capture timestamp from the conflicting date fields a camera may write.
package exifmeta

import (
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// =============================================================================
// Tag Names
// =============================================================================

// Date tags as named by goexif. The aliases cover tag maps produced by
// decoders that prefix the IFD name.
const (
	TagDateTime          = "DateTime"
	TagDateTimeOriginal  = "DateTimeOriginal"
	TagDateTimeDigitized = "DateTimeDigitized"
)

var tagAliases = map[string][]string{
	TagDateTime:          {TagDateTime, "Image DateTime"},
	TagDateTimeOriginal:  {TagDateTimeOriginal, "EXIF DateTimeOriginal"},
	TagDateTimeDigitized: {TagDateTimeDigitized, "EXIF DateTimeDigitized"},
}

// =============================================================================
// Tag Reading
// =============================================================================

// tagCollector flattens every decoded field into a name -> string map.
type tagCollector map[string]string

// Walk implements exif.Walker.
func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	if tag.Format() == tiff.StringVal {
		value, err := tag.StringVal()
		if err != nil {
			return nil
		}
		c[string(name)] = cleanValue(value)
		return nil
	}
	c[string(name)] = tag.String()
	return nil
}

// ReadTags decodes the EXIF block of the file at path and returns every field
// it contains as a string. Files without a readable EXIF block return an error.
func ReadTags(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, err
	}

	tags := tagCollector{}
	if err := x.Walk(tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// TagReader adapts ReadTags to the reader interface used by the sorter.
type TagReader struct{}

// ReadTags implements the sorter's tag provider.
func (TagReader) ReadTags(path string) (map[string]string, error) {
	return ReadTags(path)
}

// =============================================================================
// Capture Tag Precedence
// =============================================================================

// ResolveCaptureTime picks the raw capture value from tags.
// Precedence is strict: DateTime, then DateTimeOriginal, then
// DateTimeDigitized. A present tag wins even when its value will not parse.
func ResolveCaptureTime(tags map[string]string) (string, bool) {
	for _, name := range []string{TagDateTime, TagDateTimeOriginal, TagDateTimeDigitized} {
		if value, ok := lookup(tags, name); ok {
			return value, true
		}
	}
	return "", false
}

func lookup(tags map[string]string, name string) (string, bool) {
	for _, alias := range tagAliases[name] {
		if value, ok := tags[alias]; ok {
			return value, true
		}
	}
	return "", false
}

func cleanValue(value string) string {
	return strings.TrimSpace(strings.TrimRight(value, "\x00"))
}
