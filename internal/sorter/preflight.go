package sorter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxFlattenDepth bounds the single-child descent.
const maxFlattenDepth = 64

var errDestinationUnset = errors.New("destination directory is not set")

// Plan is the validated shape of a run, computed without touching the disk.
type Plan struct {
	// RequestedSource is the configured source directory.
	RequestedSource string
	// Source is the effective source after single-child flattening.
	Source      string
	Destination string
	FileCount   int
	// DestinationExists is false when the run will create the destination.
	DestinationExists bool
}

// Flattened reports whether the effective source differs from the requested one.
func (p Plan) Flattened() bool {
	return p.Source != p.RequestedSource
}

// preflight validates paths. It never creates or modifies anything. Relative
// paths are resolved against the working directory first so containment
// checks compare like with like.
func preflight(source, dest, manifest string) (Plan, error) {
	plan := Plan{RequestedSource: source, Destination: dest}

	if strings.TrimSpace(source) == "" {
		return plan, configError("", ErrSourceMissing)
	}
	var err error
	if source, err = absPath(source); err != nil {
		return plan, configError(source, err)
	}
	if dest, err = absPath(dest); err != nil {
		return plan, configError(dest, err)
	}
	if manifest, err = absPath(manifest); err != nil {
		return plan, configError(manifest, err)
	}
	plan.RequestedSource = source
	plan.Destination = dest

	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return plan, configError(source, ErrSourceMissing)
	}

	effective, err := flattenSource(source)
	if err != nil {
		return plan, configError(source, fmt.Errorf("read source: %w", err))
	}
	plan.Source = effective

	count, err := countFiles(effective)
	if err != nil {
		return plan, configError(effective, fmt.Errorf("scan source: %w", err))
	}
	if count == 0 {
		return plan, configError(effective, ErrInsufficientFiles)
	}
	plan.FileCount = count

	if strings.TrimSpace(dest) == "" {
		return plan, configError("", errDestinationUnset)
	}
	if within(dest, source) {
		return plan, configError(dest, ErrDestinationInSource)
	}
	entries, err := os.ReadDir(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		plan.DestinationExists = false
	case err != nil:
		return plan, configError(dest, fmt.Errorf("read destination: %w", err))
	case len(entries) > 0:
		return plan, configError(dest, ErrDestinationNotEmpty)
	default:
		plan.DestinationExists = true
	}

	if manifest != "" && within(manifest, dest) {
		return plan, configError(manifest, ErrManifestInDestination)
	}

	return plan, nil
}

// absPath makes a non-blank path absolute and leaves blank ones as they are.
func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return path, nil
	}
	return filepath.Abs(path)
}

// flattenSource descends while a directory holds exactly one entry that is
// itself a directory. Symlinks are not followed.
func flattenSource(root string) (string, error) {
	current := root
	for i := 0; i < maxFlattenDepth; i++ {
		entries, err := os.ReadDir(current)
		if err != nil {
			return "", err
		}
		if len(entries) != 1 || !entries[0].IsDir() {
			return current, nil
		}
		current = filepath.Join(current, entries[0].Name())
	}
	return current, nil
}

// countFiles counts regular files under root, the same set the router copies.
func countFiles(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	return count, err
}

// within reports whether path equals parent or lies beneath it.
func within(path, parent string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
