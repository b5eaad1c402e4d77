package exifmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// captureLayout is the EXIF "YYYY:MM:DD HH:MM:SS" format.
const captureLayout = "2006:01:02 15:04:05"

// Source names where a capture time came from.
type Source string

const (
	SourceExif         Source = "exif"
	SourceFilename     Source = "filename"
	SourceCreationTime Source = "ctime"
)

// Capture is a resolved capture timestamp at one-second resolution.
type Capture struct {
	Time   time.Time
	Source Source
}

// Unix returns the capture time in seconds since epoch.
func (c Capture) Unix() int64 {
	return c.Time.Unix()
}

// Options controls how Resolve falls back when tags are unusable.
type Options struct {
	// Location interprets EXIF values, which carry no zone. Nil means time.Local.
	Location *time.Location
	// FilenameDates enables filename pattern matching before the ctime fallback.
	FilenameDates bool
}

// ParseCaptureTime parses an EXIF date value in loc.
func ParseCaptureTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(captureLayout, cleanValue(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse capture time %q: %w", value, err)
	}
	return t, nil
}

// Resolve determines the capture time for the file at path.
// Priority:
//  1. the tag chosen by ResolveCaptureTime, when it parses
//  2. a date in the filename (only with opts.FilenameDates)
//  3. the file's on-disk creation time
//
// A nil tags map is treated as "no capture time found". The only error
// returned is a failure to stat the file for the creation time.
func Resolve(path string, tags map[string]string, opts Options) (Capture, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	if value, ok := ResolveCaptureTime(tags); ok {
		if t, err := ParseCaptureTime(value, loc); err == nil {
			return Capture{Time: t, Source: SourceExif}, nil
		}
	}

	if opts.FilenameDates {
		if t, ok := FilenameDate(filepath.Base(path), loc); ok {
			return Capture{Time: t, Source: SourceFilename}, nil
		}
	}

	ctime, err := CreationTime(path)
	if err != nil {
		return Capture{}, err
	}
	return Capture{Time: ctime.In(loc).Truncate(time.Second), Source: SourceCreationTime}, nil
}

// CreationTime returns the on-disk creation time of path. See ctime_*.go for
// the per-platform source of that value.
func CreationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return creationTime(path, info)
}

// =============================================================================
// Filename Date Patterns
// =============================================================================

// datePatterns are tried in order; first match wins.
var datePatterns = []struct {
	regex  *regexp.Regexp
	layout string
}{
	// DJI drone: DJI_20250619224111_0001_D.MP4
	{regexp.MustCompile(`DJI_(\d{8})`), "20060102"},
	// Sony video: 20250616_C0416.MP4
	{regexp.MustCompile(`^(\d{8})_C\d+`), "20060102"},
	// Generic timestamp: IMG_20250619_123456.jpg
	{regexp.MustCompile(`(\d{8})_\d{6}`), "20060102"},
	// ISO date: 2025-06-19_photo.jpg
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	// Compact date: 20250619_photo.jpg
	{regexp.MustCompile(`(\d{8})`), "20060102"},
}

// FilenameDate extracts a date from a camera-style filename.
func FilenameDate(name string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, p := range datePatterns {
		matches := p.regex.FindStringSubmatch(name)
		if len(matches) < 2 {
			continue
		}
		if t, err := time.ParseInLocation(p.layout, matches[1], loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
