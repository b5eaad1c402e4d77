package sorter

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"photosort/internal/config"
	"photosort/internal/exifmeta"
	"photosort/internal/fsutil"
)

const secondsPerDay = 24 * 60 * 60

// capturedImage is one (captureTime, path) pair collected for clustering.
type capturedImage struct {
	path    string
	unix    int64
	capture time.Time
}

// clusterByDate moves every date-sortable image out of <dest>/<ext>/ into
// PROCESSED/<year>/[<MM>/]<event>/, or into the unknown folder when the image
// cannot be dated or was captured today.
//
// Per run: COLLECTING, SORTING, ASSIGNING (NEW_EVENT | CONTINUE_EVENT |
// TODAY_BYPASS), DONE. The first I/O failure aborts the assignment loop.
func (r *run) clusterByDate() error {
	logger := r.logger.With(slog.String("phase", string(PhaseCluster)))

	images, undated, err := r.collectImages(logger)
	if err != nil {
		return err
	}
	r.progressf("Found %d images to sort by date", len(images)+len(undated))

	for _, path := range undated {
		if err := r.moveImage(path, r.unknownDir(), time.Time{}, 0, logger); err != nil {
			return err
		}
		r.result.Unknown++
	}

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].unix != images[j].unix {
			return images[i].unix < images[j].unix
		}
		return images[i].path < images[j].path
	})

	gap := int64(r.cfg.Sorting.MinEventGapDays) * secondsPerDay
	step := len(images) / 100
	if step < 1 {
		step = 1
	}

	var (
		previous  int64
		started   bool
		eventPath string
	)
	for i, img := range images {
		if r.isToday(img.capture) {
			if err := r.moveImage(img.path, r.unknownDir(), img.capture, 0, logger); err != nil {
				return err
			}
			r.result.Bypassed++
			continue
		}

		if !started || img.unix-previous > gap {
			r.eventNumber++
			r.result.Events++
			eventPath = r.eventDir(img.capture, r.eventNumber)
			if err := os.MkdirAll(eventPath, 0o755); err != nil {
				return ioError(PhaseCluster, eventPath, err)
			}
			started = true
			r.track(eventPath)
			r.progressf("Event %d: %s", r.eventNumber, r.rel(eventPath))
		} else if candidate := r.eventDir(img.capture, r.eventNumber); candidate != eventPath {
			// An event crossing a year (or month) boundary keeps its first
			// folder; a member never creates a second one.
			if fsutil.Exists(candidate) {
				eventPath = candidate
			} else {
				logger.Debug("event crosses calendar boundary, reusing folder",
					slog.Int("event", r.eventNumber),
					slog.String("computed", candidate),
					slog.String("used", eventPath),
				)
			}
		}
		previous = img.unix

		if err := r.moveImage(img.path, eventPath, img.capture, r.eventNumber, logger); err != nil {
			return err
		}
		r.result.Dated++

		if (i+1)%step == 0 && i+1 < len(images) {
			r.progressf("Sorted %d%% of images (%d/%d)", (i+1)*100/len(images), i+1, len(images))
		}
	}

	r.progressf("Sorted %d images into %d events, %d to %s",
		r.result.Dated, r.result.Events, r.result.Bypassed+r.result.Unknown, filepath.Base(r.unknownDir()))
	logger.Info("date clustering complete",
		slog.Int("events", r.result.Events),
		slog.Int("dated", r.result.Dated),
		slog.Int("today", r.result.Bypassed),
		slog.Int("undated", r.result.Unknown),
		slog.Int("duplicates", len(r.result.Duplicates)),
	)
	return nil
}

// collectImages resolves capture times for every image in the routed
// extension folders. Images whose tags cannot be read are returned in undated
// when the metadata policy routes them to the remainder.
func (r *run) collectImages(logger *slog.Logger) ([]capturedImage, []string, error) {
	entries, err := os.ReadDir(r.dest)
	if err != nil {
		return nil, nil, ioError(PhaseCluster, r.dest, err)
	}

	var (
		images  []capturedImage
		undated []string
	)
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == processedDirName {
			continue
		}
		if ext, ok := folderExtension(entry.Name()); !ok || !r.imageExts[ext] {
			logger.Debug("skipping non-image folder", slog.String("folder", entry.Name()))
			continue
		}

		dir := filepath.Join(r.dest, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, ioError(PhaseCluster, dir, err)
		}
		for _, f := range files {
			if !f.Type().IsRegular() {
				continue
			}
			path := filepath.Join(dir, f.Name())

			tags, err := r.tags.ReadTags(path)
			if err != nil {
				logger.Warn("invalid exif tags",
					slog.String("file", path),
					slog.String("kind", string(KindMetadata)),
					slog.String("error", err.Error()),
				)
				r.progressf("invalid exif tags for %s", f.Name())
				if r.cfg.Sorting.OnMetadataError == config.MetadataErrorRemainder {
					undated = append(undated, path)
					continue
				}
				tags = nil
			}

			c, err := exifmeta.Resolve(path, tags, exifmeta.Options{
				Location:      r.loc,
				FilenameDates: r.cfg.Sorting.FilenameDates,
			})
			if err != nil {
				return nil, nil, ioError(PhaseCluster, path, err)
			}
			logger.Debug("resolved capture time",
				slog.String("file", path),
				slog.String("source", string(c.Source)),
				slog.Time("capture", c.Time),
			)
			capture := time.Unix(c.Unix(), 0).In(r.loc)
			images = append(images, capturedImage{path: path, unix: c.Unix(), capture: capture})
		}
	}
	return images, undated, nil
}

// isToday compares calendar dates in the run's location.
func (r *run) isToday(t time.Time) bool {
	y1, m1, d1 := t.In(r.loc).Date()
	y2, m2, d2 := r.now.In(r.loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// moveImage moves src into dir. When the target already exists the source is
// treated as a duplicate and deleted; this cannot be undone, so it is logged
// at warn level, reported as progress and listed in the result.
func (r *run) moveImage(src, dir string, capture time.Time, event int, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioError(PhaseCluster, dir, err)
	}
	target := filepath.Join(dir, filepath.Base(src))
	if dir == filepath.Join(r.processedDir(), unknownDirName) {
		r.track(dir)
	}

	if fsutil.Exists(target) {
		if err := os.Remove(src); err != nil {
			return ioError(PhaseCluster, src, err)
		}
		r.result.Duplicates = append(r.result.Duplicates, Duplicate{Source: src, Existing: target})
		logger.Warn("duplicate image deleted",
			slog.String("source", src),
			slog.String("existing", target),
		)
		r.progressf("Duplicate %s already at %s, source deleted", filepath.Base(src), r.rel(target))
		return nil
	}

	if err := fsutil.Move(src, target); err != nil {
		return ioError(PhaseCluster, src, err)
	}
	r.record(manifestEntry{path: target, source: src, capture: capture, event: event})
	return nil
}
