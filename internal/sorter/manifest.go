package sorter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"photosort/internal/fsutil"
)

// =============================================================================
// Manifest
// =============================================================================

// manifestHeaders are the CSV columns, keyed by relative_path.
var manifestHeaders = []string{
	"filename",      // Base filename
	"relative_path", // Path relative to the destination
	"source_path",   // Original path in the source tree
	"size_bytes",    // Size in bytes
	"capture_date",  // Resolved capture time, empty when undated
	"event",         // Event number, empty outside events
	"tier",          // Remainder tier, empty outside tiers
	"file_hash",     // MD5 of first 64KB
	"extension",     // Lower-case extension
	"organized_date",
}

// manifestEntry describes one file placed by the clusterer or bucketer.
type manifestEntry struct {
	path    string
	source  string
	capture time.Time
	event   int
	tier    int
}

// manifest accumulates rows for one run and merges them into the CSV on flush.
// Entries are keyed by their current path; origins maps a placed file back to
// the path it had in the source tree.
type manifest struct {
	path    string
	dest    string
	now     time.Time
	entries map[string]manifestEntry
	origins map[string]string
}

func newManifest(path, dest string, now time.Time) *manifest {
	return &manifest{
		path:    path,
		dest:    dest,
		now:     now,
		entries: make(map[string]manifestEntry),
		origins: make(map[string]string),
	}
}

// routed remembers where a file copied into <dest>/<ext>/ came from.
func (r *run) routed(target, source string) {
	if r.manifest != nil {
		r.manifest.origins[target] = source
	}
}

// record adds a manifest row when a manifest is configured. A file moved
// twice in one run (unknown-to-sort, then a tier) keeps only its final row.
func (r *run) record(e manifestEntry) {
	m := r.manifest
	if m == nil {
		return
	}
	previous := e.source
	if origin, ok := m.origins[previous]; ok {
		e.source = origin
		delete(m.origins, previous)
	}
	if prior, ok := m.entries[previous]; ok {
		e.source = prior.source
		if e.capture.IsZero() {
			e.capture = prior.capture
		}
		if e.event == 0 {
			e.event = prior.event
		}
		if e.tier == 0 {
			e.tier = prior.tier
		}
		delete(m.entries, previous)
	}
	m.entries[e.path] = e
}

// flush merges the run's rows with any existing manifest and rewrites it
// sorted by relative path. Rows already present are kept as they were.
func (m *manifest) flush() (int, error) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return 0, err
	}

	existing := make(map[string][]string)
	if f, err := os.Open(m.path); err == nil {
		records, readErr := csv.NewReader(f).ReadAll()
		f.Close()
		if readErr != nil {
			return 0, fmt.Errorf("read manifest: %w", readErr)
		}
		if len(records) > 0 {
			for _, row := range records[1:] {
				if len(row) > 1 {
					existing[row[1]] = row
				}
			}
		}
	}

	added := 0
	for _, e := range m.entries {
		row := m.row(e)
		if _, ok := existing[row[1]]; ok {
			continue
		}
		existing[row[1]] = row
		added++
	}

	f, err := os.Create(m.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(manifestHeaders); err != nil {
		return 0, err
	}

	paths := make([]string, 0, len(existing))
	for p := range existing {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := w.Write(existing[p]); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return added, f.Close()
}

func (m *manifest) row(e manifestEntry) []string {
	rel, err := filepath.Rel(m.dest, e.path)
	if err != nil {
		rel = e.path
	}

	var size string
	if info, err := os.Stat(e.path); err == nil {
		size = strconv.FormatInt(info.Size(), 10)
	}
	var capture, event, tier string
	if !e.capture.IsZero() {
		capture = e.capture.Format("2006:01:02 15:04:05")
	}
	if e.event > 0 {
		event = strconv.Itoa(e.event)
	}
	if e.tier > 0 {
		tier = strconv.Itoa(e.tier)
	}

	return []string{
		filepath.Base(e.path),
		filepath.ToSlash(rel),
		e.source,
		size,
		capture,
		event,
		tier,
		fsutil.PartialHash(e.path),
		strings.TrimPrefix(strings.ToLower(filepath.Ext(e.path)), "."),
		m.now.Format("2006-01-02 15:04:05"),
	}
}
