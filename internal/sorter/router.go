package sorter

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"photosort/internal/config"
	"photosort/internal/fsutil"
)

// fileRecord is one file on its way into <dest>/<ext>/.
type fileRecord struct {
	sourcePath   string
	extension    string
	assignedName string
}

// newFileRecord takes the next counter value, whether or not the name ends up
// using it, so re-runs over the same tree assign the same names.
func (r *run) newFileRecord(path string) fileRecord {
	ext := config.NormalizeExtension(filepath.Ext(path))
	n := r.fileCounter
	r.fileCounter++

	name := filepath.Base(path)
	if !r.cfg.Sorting.KeepOriginalName {
		name = strconv.Itoa(n)
		if ext != "" {
			name += "." + ext
		}
	}
	return fileRecord{sourcePath: path, extension: ext, assignedName: name}
}

// routeByExtension copies (or moves, with skip_copy) every regular file of the
// effective source into <dest>/<ext>/ (see extensionDirName). Files with no
// extension land in <dest>/_/. Existing destination files are left alone.
func (r *run) routeByExtension(total int) error {
	logger := r.logger.With(slog.String("phase", string(PhaseRoute)))
	verb := "Copied"
	if r.cfg.Sorting.SkipCopy {
		verb = "Moved"
	}

	step := total / 100
	if step < 1 {
		step = 1
	}
	processed := 0

	err := filepath.WalkDir(r.source, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return ioError(PhaseRoute, path, walkErr)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rec := r.newFileRecord(path)
		dir := r.extensionDir(rec.extension)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ioError(PhaseRoute, dir, err)
		}
		target := filepath.Join(dir, rec.assignedName)

		placed, err := r.place(rec.sourcePath, target)
		if err != nil {
			return ioError(PhaseRoute, rec.sourcePath, err)
		}
		if placed {
			r.result.Routed++
			r.routed(target, rec.sourcePath)
			logger.Debug("routed file", slog.String("source", rec.sourcePath), slog.String("target", target))
		} else {
			r.result.SkippedExisting++
			logger.Debug("destination exists, skipped", slog.String("source", rec.sourcePath), slog.String("target", target))
		}

		processed++
		if processed%step == 0 && processed < total {
			r.progressf("%s %d%% of files (%d/%d)", verb, processed*100/total, processed, total)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.progressf("%s %d files by extension (%d already present)", verb, r.result.Routed, r.result.SkippedExisting)
	logger.Info("extension routing complete",
		slog.Int("routed", r.result.Routed),
		slog.Int("skipped", r.result.SkippedExisting),
	)
	return nil
}

// place copies or moves src to target. It reports false when target already
// exists and nothing was done.
func (r *run) place(src, target string) (bool, error) {
	if fsutil.Exists(target) {
		return false, nil
	}
	if r.cfg.Sorting.SkipCopy {
		return true, fsutil.Move(src, target)
	}
	err := fsutil.CopyFile(src, target)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	return err == nil, err
}
