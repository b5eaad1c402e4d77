package config

const (
	defaultConfigPath      = "~/.config/photosort/config.toml"
	defaultDifference      = 200
	defaultMinEventGapDays = 4
	defaultMaxFilesPerDir  = 500
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Remainder sort keys.
const (
	SortBySize       = "size"
	SortByResolution = "resolution"
)

// Metadata error policies.
const (
	MetadataErrorCreationTime = "ctime"
	MetadataErrorRemainder    = "remainder"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sorting: Sorting{
			Difference:        defaultDifference,
			RemainderSortKey:  SortBySize,
			MinEventGapDays:   defaultMinEventGapDays,
			MaxFilesPerFolder: defaultMaxFilesPerDir,
			OnMetadataError:   MetadataErrorCreationTime,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
