package sorter

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"photosort/internal/fsutil"
)

// splitLargeFolders spreads every filled folder holding more than
// max_files_per_folder files over numbered subfolders 1, 2, ... of at most
// that many files each, in name order.
func (r *run) splitLargeFolders() error {
	limit := r.cfg.Sorting.MaxFilesPerFolder
	if limit <= 0 || len(r.filled) == 0 {
		return nil
	}
	logger := r.logger.With(slog.String("phase", string(PhaseSplit)))

	dirs := make([]string, 0, len(r.filled))
	for dir := range r.filled {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return ioError(PhaseSplit, dir, err)
		}
		var files []string
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, e.Name())
			}
		}
		if len(files) <= limit {
			continue
		}

		parts := (len(files) + limit - 1) / limit
		for i, name := range files {
			part := filepath.Join(dir, strconv.Itoa(i/limit+1))
			if err := os.MkdirAll(part, 0o755); err != nil {
				return ioError(PhaseSplit, part, err)
			}
			src := filepath.Join(dir, name)
			target := filepath.Join(part, name)
			if err := fsutil.Move(src, target); err != nil {
				return ioError(PhaseSplit, src, err)
			}
			r.record(manifestEntry{path: target, source: src})
		}

		r.result.SplitFolders++
		r.progressf("Split %s into %d folders of at most %d files", r.rel(dir), parts, limit)
		logger.Info("split folder",
			slog.String("folder", dir),
			slog.Int("files", len(files)),
			slog.Int("parts", parts),
		)
	}
	return nil
}
