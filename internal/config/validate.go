package config

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize trims and canonicalizes values in place and expands paths.
func (c *Config) Normalize() error {
	var err error
	if c.Paths.Source, err = expandPath(strings.TrimSpace(c.Paths.Source)); err != nil {
		return fmt.Errorf("paths.source: %w", err)
	}
	if c.Paths.Destination, err = expandPath(strings.TrimSpace(c.Paths.Destination)); err != nil {
		return fmt.Errorf("paths.destination: %w", err)
	}
	if c.Manifest.Path, err = expandPath(strings.TrimSpace(c.Manifest.Path)); err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}

	key := strings.ToLower(strings.TrimSpace(c.Sorting.RemainderSortKey))
	switch key {
	case "":
		key = SortBySize
	case "res":
		key = SortByResolution
	}
	c.Sorting.RemainderSortKey = key

	policy := strings.ToLower(strings.TrimSpace(c.Sorting.OnMetadataError))
	if policy == "" {
		policy = MetadataErrorCreationTime
	}
	c.Sorting.OnMetadataError = policy

	c.Sorting.ImageExtensions = normalizeExtensions(c.Sorting.ImageExtensions)
	c.Sorting.RemainderExtensions = normalizeExtensions(c.Sorting.RemainderExtensions)

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

// NormalizeExtension lowercases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = NormalizeExtension(ext)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

// Validate checks value ranges and enumerations. Paths are checked by the
// sorter's pre-flight, not here.
func (c *Config) Validate() error {
	var errs []error

	if c.Sorting.Difference <= 0 {
		errs = append(errs, fmt.Errorf("sorting.difference must be positive, got %d", c.Sorting.Difference))
	}
	if c.Sorting.MinEventGapDays < 0 {
		errs = append(errs, fmt.Errorf("sorting.min_event_gap_days must not be negative, got %d", c.Sorting.MinEventGapDays))
	}
	if c.Sorting.MaxFilesPerFolder < 0 {
		errs = append(errs, fmt.Errorf("sorting.max_files_per_folder must not be negative, got %d", c.Sorting.MaxFilesPerFolder))
	}
	switch c.Sorting.RemainderSortKey {
	case SortBySize, SortByResolution:
	default:
		errs = append(errs, fmt.Errorf("sorting.remainder_sort_key: unsupported value %q (size|resolution)", c.Sorting.RemainderSortKey))
	}
	switch c.Sorting.OnMetadataError {
	case MetadataErrorCreationTime, MetadataErrorRemainder:
	default:
		errs = append(errs, fmt.Errorf("sorting.on_metadata_error: unsupported value %q (ctime|remainder)", c.Sorting.OnMetadataError))
	}
	for _, ext := range c.Sorting.RemainderExtensions {
		for _, img := range c.Sorting.ImageExtensions {
			if ext == img {
				errs = append(errs, fmt.Errorf("extension %q is listed in both image_extensions and remainder_extensions", ext))
			}
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
