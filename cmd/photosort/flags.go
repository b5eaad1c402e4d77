package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photosort/internal/config"
)

// sortFlags mirrors the config keys a single invocation may override.
type sortFlags struct {
	configPath      string
	sortRemaining   bool
	sortBy          string
	difference      int
	keepName        bool
	skipCopy        bool
	minGapDays      int
	splitMonths     bool
	maxPerFolder    int
	filenameDates   bool
	onMetadataError string
	manifest        string
	logLevel        string
	logFormat       string
}

func (f *sortFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	fs := cmd.PersistentFlags()
	fs.StringVarP(&f.configPath, "config", "c", "", "Configuration file path")
	fs.BoolVarP(&f.sortRemaining, "sort-remaining", "r", false, "Bucket undated images by size or resolution")
	fs.StringVar(&f.sortBy, "sort-by", defaults.Sorting.RemainderSortKey, "Remainder bucketing key: size or res")
	fs.IntVar(&f.difference, "difference", defaults.Sorting.Difference, "Tier step in bytes or pixels")
	fs.BoolVar(&f.keepName, "keep-name", false, "Keep original file names instead of numbering them")
	fs.BoolVar(&f.skipCopy, "skip-copy", false, "Move files out of the source instead of copying")
	fs.IntVar(&f.minGapDays, "min-gap-days", defaults.Sorting.MinEventGapDays, "Days between photos that start a new event")
	fs.BoolVar(&f.splitMonths, "split-months", false, "Add a month level under each year")
	fs.IntVar(&f.maxPerFolder, "max-files-per-folder", defaults.Sorting.MaxFilesPerFolder, "Split event and tier folders above this many files, 0 disables")
	fs.BoolVar(&f.filenameDates, "filename-dates", false, "Date images by camera-style file names when EXIF is missing")
	fs.StringVar(&f.onMetadataError, "on-metadata-error", defaults.Sorting.OnMetadataError, "Unreadable EXIF handling: ctime or remainder")
	fs.StringVar(&f.manifest, "manifest", "", "Write a CSV manifest of sorted images to this path")
	fs.StringVar(&f.logLevel, "log-level", defaults.Logging.Level, "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", defaults.Logging.Format, "Log format: console or json")
}

// loadConfig reads the config file and applies positional paths and every
// flag the user set explicitly. Unset flags never clobber file values.
func (f *sortFlags) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	path := strings.TrimSpace(f.configPath)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path != "" && !exists {
		return nil, fmt.Errorf("config file %s does not exist", resolved)
	}

	switch len(args) {
	case 0:
	case 2:
		cfg.Paths.Source = args[0]
		cfg.Paths.Destination = args[1]
	default:
		return nil, errors.New("expected <source> <destination>")
	}

	flags := cmd.Flags()
	if flags.Changed("sort-remaining") {
		cfg.Sorting.SortRemainder = f.sortRemaining
	}
	if flags.Changed("sort-by") {
		cfg.Sorting.RemainderSortKey = f.sortBy
	}
	if flags.Changed("difference") {
		cfg.Sorting.Difference = f.difference
	}
	if flags.Changed("keep-name") {
		cfg.Sorting.KeepOriginalName = f.keepName
	}
	if flags.Changed("skip-copy") {
		cfg.Sorting.SkipCopy = f.skipCopy
	}
	if flags.Changed("min-gap-days") {
		cfg.Sorting.MinEventGapDays = f.minGapDays
	}
	if flags.Changed("split-months") {
		cfg.Sorting.SplitByMonth = f.splitMonths
	}
	if flags.Changed("max-files-per-folder") {
		cfg.Sorting.MaxFilesPerFolder = f.maxPerFolder
	}
	if flags.Changed("filename-dates") {
		cfg.Sorting.FilenameDates = f.filenameDates
	}
	if flags.Changed("on-metadata-error") {
		cfg.Sorting.OnMetadataError = f.onMetadataError
	}
	if flags.Changed("manifest") {
		cfg.Manifest.Path = f.manifest
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
