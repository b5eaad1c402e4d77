package sorter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"photosort/internal/config"
	"photosort/internal/fsutil"
)

const tierCount = 10

// Tiers returns the ten bucket thresholds difference×10 down to difference×1.
func Tiers(difference int) []int {
	tiers := make([]int, 0, tierCount)
	for i := tierCount; i >= 1; i-- {
		tiers = append(tiers, difference*i)
	}
	return tiers
}

// matchTier scans tiers largest first and returns the first one meets accepts.
func matchTier(tiers []int, meets func(threshold int) bool) (int, bool) {
	for _, threshold := range tiers {
		if meets(threshold) {
			return threshold, true
		}
	}
	return 0, false
}

// SizeTier returns the tier a file of size bytes belongs to.
func SizeTier(tiers []int, size int64) (int, bool) {
	return matchTier(tiers, func(threshold int) bool {
		return size >= int64(threshold)
	})
}

// ResolutionTier returns the tier for an image where either dimension meeting
// the threshold qualifies.
func ResolutionTier(tiers []int, width, height int) (int, bool) {
	return matchTier(tiers, func(threshold int) bool {
		return width >= threshold || height >= threshold
	})
}

// measureFunc returns the tier for one file or an error when the file cannot
// be measured.
type measureFunc func(path string) (tier int, ok bool, detail string, err error)

// bucketRemainder runs the configured bucketing mode over the unknown-to-sort
// folder and any extension folders configured to skip date sorting.
func (r *run) bucketRemainder() error {
	dirs := []string{filepath.Join(r.processedDir(), unknownToSortDirName)}
	for _, ext := range r.cfg.Sorting.RemainderExtensions {
		dirs = append(dirs, r.extensionDir(ext))
	}

	if r.cfg.Sorting.RemainderSortKey == config.SortByResolution {
		return r.bucketByResolution(dirs...)
	}
	return r.bucketBySize(dirs...)
}

// bucketBySize moves each file into <dest>/<tier>/ by byte size.
func (r *run) bucketBySize(dirs ...string) error {
	tiers := Tiers(r.cfg.Sorting.Difference)
	return r.bucket(dirs, "size", func(path string) (int, bool, string, error) {
		size, err := r.dims.ByteSize(path)
		if err != nil {
			return 0, false, "", err
		}
		tier, ok := SizeTier(tiers, size)
		return tier, ok, humanize.Bytes(uint64(size)), nil
	})
}

// bucketByResolution moves each file into <dest>/<tier>/ by pixel dimensions.
func (r *run) bucketByResolution(dirs ...string) error {
	tiers := Tiers(r.cfg.Sorting.Difference)
	return r.bucket(dirs, "resolution", func(path string) (int, bool, string, error) {
		w, h, err := r.dims.PixelSize(path)
		if err != nil {
			return 0, false, "", err
		}
		tier, ok := ResolutionTier(tiers, w, h)
		return tier, ok, fmt.Sprintf("%dx%d", w, h), nil
	})
}

func (r *run) bucket(dirs []string, mode string, measure measureFunc) error {
	logger := r.logger.With(slog.String("phase", string(PhaseBucket)), slog.String("mode", mode))

	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return ioError(PhaseBucket, dir, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	r.progressf("Sorting %d remaining files by %s", len(files), mode)

	for _, path := range files {
		tier, ok, detail, err := measure(path)
		if err != nil {
			logger.Warn("cannot measure file", slog.String("file", path), slog.String("error", err.Error()))
			r.unmatched(path, fmt.Sprintf("cannot read %s: %v", mode, err))
			continue
		}
		if !ok {
			r.unmatched(path, fmt.Sprintf("%s %s is below the smallest tier", mode, detail))
			continue
		}

		dir := r.tierDir(tier)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ioError(PhaseBucket, dir, err)
		}
		target := filepath.Join(dir, filepath.Base(path))
		if fsutil.Exists(target) {
			r.unmatched(path, fmt.Sprintf("%s already exists", r.rel(target)))
			continue
		}
		if err := fsutil.Move(path, target); err != nil {
			return ioError(PhaseBucket, path, err)
		}
		r.track(dir)
		r.result.Bucketed++
		r.record(manifestEntry{path: target, source: path, tier: tier})
		logger.Debug("bucketed file", slog.String("file", path), slog.Int("tier", tier), slog.String("measure", detail))
	}

	r.progressf("Bucketed %d files, %d left unmatched", r.result.Bucketed, len(r.result.Unmatched))
	logger.Info("remainder bucketing complete",
		slog.Int("bucketed", r.result.Bucketed),
		slog.Int("unmatched", len(r.result.Unmatched)),
	)
	return nil
}

// unmatched surfaces a file the bucketer left in place.
func (r *run) unmatched(path, reason string) {
	r.result.Unmatched = append(r.result.Unmatched, Unmatched{Path: path, Reason: reason})
	r.progressf("Not bucketed: %s (%s)", r.rel(path), reason)
}
