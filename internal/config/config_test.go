package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Normalize())
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 200, cfg.Sorting.Difference)
	assert.Equal(t, 4, cfg.Sorting.MinEventGapDays)
	assert.Equal(t, 500, cfg.Sorting.MaxFilesPerFolder)
	assert.Equal(t, SortBySize, cfg.Sorting.RemainderSortKey)
	assert.Equal(t, MetadataErrorCreationTime, cfg.Sorting.OnMetadataError)
	assert.False(t, cfg.Sorting.SortRemainder)
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photosort.toml")
	content := `
[paths]
source = "` + filepath.Join(dir, "in") + `"
destination = "` + filepath.Join(dir, "out") + `"

[sorting]
difference = 500
sort_remainder = true
remainder_sort_key = "RES"
split_by_month = true
image_extensions = [".JPG", "png", "jpg"]
remainder_extensions = ["mp4"]

[logging]
level = "DEBUG"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, filepath.Join(dir, "in"), cfg.Paths.Source)
	assert.Equal(t, 500, cfg.Sorting.Difference)
	assert.True(t, cfg.Sorting.SortRemainder)
	assert.Equal(t, SortByResolution, cfg.Sorting.RemainderSortKey)
	assert.True(t, cfg.Sorting.SplitByMonth)
	assert.Equal(t, []string{"jpg", "png"}, cfg.Sorting.ImageExtensions)
	assert.Equal(t, []string{"mp4"}, cfg.Sorting.RemainderExtensions)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Sorting.MinEventGapDays, "unset keys keep defaults")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, Default().Sorting.Difference, cfg.Sorting.Difference)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[sorting]\nbogus = 1\n"), 0o644))

	_, _, _, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero difference", func(c *Config) { c.Sorting.Difference = 0 }, "difference must be positive"},
		{"negative gap", func(c *Config) { c.Sorting.MinEventGapDays = -1 }, "min_event_gap_days"},
		{"negative folder limit", func(c *Config) { c.Sorting.MaxFilesPerFolder = -1 }, "max_files_per_folder"},
		{"bad sort key", func(c *Config) { c.Sorting.RemainderSortKey = "colour" }, "remainder_sort_key"},
		{"bad metadata policy", func(c *Config) { c.Sorting.OnMetadataError = "skip" }, "on_metadata_error"},
		{"overlapping extensions", func(c *Config) {
			c.Sorting.ImageExtensions = []string{"jpg"}
			c.Sorting.RemainderExtensions = []string{"jpg"}
		}, "both image_extensions and remainder_extensions"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, CreateSample(path))

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 200, cfg.Sorting.Difference)
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, "jpg", NormalizeExtension(".JPG"))
	assert.Equal(t, "heic", NormalizeExtension(" heic "))
	assert.Equal(t, "", NormalizeExtension(""))
}
