package sorter

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"photosort/internal/config"
	"photosort/internal/imageinfo"
	"photosort/internal/logging"
)

// runDate is "today" for every test run.
var runDate = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return runDate }

// fakeTags serves EXIF tags keyed by file base name. Unknown files fail like
// an image without an EXIF block.
type fakeTags map[string]map[string]string

func (f fakeTags) ReadTags(path string) (map[string]string, error) {
	tags, ok := f[filepath.Base(path)]
	if !ok {
		return nil, errors.New("exif: failed to find exif intro marker")
	}
	return tags, nil
}

// dated is a tag map holding only DateTimeOriginal.
func dated(t time.Time) map[string]string {
	return map[string]string{"DateTimeOriginal": t.Format("2006:01:02 15:04:05")}
}

// fakeDims serves pixel sizes keyed by base name and real byte sizes.
type fakeDims map[string][2]int

func (f fakeDims) PixelSize(path string) (int, int, error) {
	wh, ok := f[filepath.Base(path)]
	if !ok {
		return 0, 0, errors.New("image: unknown format")
	}
	return wh[0], wh[1], nil
}

func (f fakeDims) ByteSize(path string) (int64, error) {
	return imageinfo.Reader{}.ByteSize(path)
}

func testConfig(source, dest string) *config.Config {
	cfg := config.Default()
	cfg.Paths.Source = source
	cfg.Paths.Destination = dest
	return &cfg
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644))
}

// newTestRun builds run state for exercising a single phase directly.
func newTestRun(t *testing.T, cfg *config.Config, tags TagReader, dims DimensionReader) (*run, *[]string) {
	t.Helper()
	var lines []string
	r := &run{
		cfg:       cfg,
		source:    cfg.Paths.Source,
		dest:      cfg.Paths.Destination,
		tags:      tags,
		dims:      dims,
		loc:       time.UTC,
		now:       runDate,
		logger:    logging.Discard(),
		report:    func(msg string) { lines = append(lines, msg) },
		imageExts: extensionSet(defaultImageExts),
	}
	return r, &lines
}

func newTestSorter(cfg *config.Config, tags TagReader) *Sorter {
	return New(cfg,
		WithTagReader(tags),
		WithDimensionReader(fakeDims{}),
		WithClock(fixedClock),
		WithLocation(time.UTC),
	)
}

// listFiles returns every regular file under root as slash paths relative to it.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}
