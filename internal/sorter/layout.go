package sorter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Destination layout names.
const (
	processedDirName     = "PROCESSED"
	unknownDirName       = "unknown"
	unknownToSortDirName = "unknown-to-sort"
)

// defaultImageExts are date-sortable extensions when the config names none.
var defaultImageExts = []string{
	"jpg", "jpeg", "png", "gif",
	"heic", "hif", // Apple HEIF
	"tif", "tiff",
	"dng", // Adobe Digital Negative
	"arw", // Sony RAW
	"cr2", // Canon RAW
	"nef", // Nikon RAW
	"raf", // Fujifilm RAW
	"bmp", "webp",
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[ext] = true
	}
	return set
}

// extensionDirName is the routing folder for ext. The empty extension, names
// the pipeline creates itself (tier numbers, PROCESSED) and names already
// starting with an underscore get a leading underscore, so routed folders
// never share a name with tier or PROCESSED folders.
func extensionDirName(ext string) string {
	if ext == "" || ext == strings.ToLower(processedDirName) || strings.HasPrefix(ext, "_") || isDigits(ext) {
		return "_" + ext
	}
	return ext
}

// folderExtension inverts extensionDirName. ok is false for folders the
// router never creates.
func folderExtension(name string) (string, bool) {
	ext := strings.TrimPrefix(name, "_")
	return ext, extensionDirName(ext) == name
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func (r *run) extensionDir(ext string) string {
	return filepath.Join(r.dest, extensionDirName(ext))
}

func (r *run) processedDir() string {
	return filepath.Join(r.dest, processedDirName)
}

// unknownDir is where images without a usable date end up.
func (r *run) unknownDir() string {
	if r.cfg.Sorting.SortRemainder {
		return filepath.Join(r.processedDir(), unknownToSortDirName)
	}
	return filepath.Join(r.processedDir(), unknownDirName)
}

// eventDir is PROCESSED/<year>/[<MM>/]<event>.
func (r *run) eventDir(t time.Time, event int) string {
	parts := []string{r.processedDir(), strconv.Itoa(t.Year())}
	if r.cfg.Sorting.SplitByMonth {
		parts = append(parts, fmt.Sprintf("%02d", int(t.Month())))
	}
	parts = append(parts, strconv.Itoa(event))
	return filepath.Join(parts...)
}

func (r *run) tierDir(threshold int) string {
	return filepath.Join(r.dest, strconv.Itoa(threshold))
}

// rel renders path relative to the destination for progress lines.
func (r *run) rel(path string) string {
	if rel, err := filepath.Rel(r.dest, path); err == nil {
		return rel
	}
	return path
}
