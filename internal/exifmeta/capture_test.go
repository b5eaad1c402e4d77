package exifmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCaptureTimePrecedence(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
		ok   bool
	}{
		{
			name: "DateTime wins over all",
			tags: map[string]string{
				TagDateTime:          "2020:01:01 10:00:00",
				TagDateTimeOriginal:  "2019:05:05 05:05:05",
				TagDateTimeDigitized: "2018:03:03 03:03:03",
			},
			want: "2020:01:01 10:00:00",
			ok:   true,
		},
		{
			name: "original beats digitized",
			tags: map[string]string{
				TagDateTimeOriginal:  "2019:05:05 05:05:05",
				TagDateTimeDigitized: "2018:03:03 03:03:03",
			},
			want: "2019:05:05 05:05:05",
			ok:   true,
		},
		{
			name: "digitized alone",
			tags: map[string]string{TagDateTimeDigitized: "2018:03:03 03:03:03"},
			want: "2018:03:03 03:03:03",
			ok:   true,
		},
		{
			name: "present but garbage still wins",
			tags: map[string]string{
				TagDateTime:         "not a date",
				TagDateTimeOriginal: "2019:05:05 05:05:05",
			},
			want: "not a date",
			ok:   true,
		},
		{
			name: "prefixed aliases",
			tags: map[string]string{"EXIF DateTimeOriginal": "2017:07:07 07:07:07"},
			want: "2017:07:07 07:07:07",
			ok:   true,
		},
		{name: "none", tags: map[string]string{"Model": "X100"}},
		{name: "nil map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveCaptureTime(tt.tags)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCaptureTime(t *testing.T) {
	got, err := ParseCaptureTime("2021:08:14 16:30:05\x00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 8, 14, 16, 30, 5, 0, time.UTC), got)

	_, err = ParseCaptureTime("2021-08-14 16:30:05", time.UTC)
	assert.Error(t, err)
}

func TestResolveUsesTagThenCreationTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_20200102_030405.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	c, err := Resolve(path, map[string]string{
		TagDateTime:         "2020:01:01 10:00:00",
		TagDateTimeOriginal: "2019:05:05 05:05:05",
	}, Options{Location: time.UTC})
	require.NoError(t, err)
	assert.Equal(t, SourceExif, c.Source)
	assert.Equal(t, time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC).Unix(), c.Unix())

	// Unparseable DateTime does not fall through to DateTimeOriginal.
	c, err = Resolve(path, map[string]string{
		TagDateTime:         "garbage",
		TagDateTimeOriginal: "2019:05:05 05:05:05",
	}, Options{Location: time.UTC})
	require.NoError(t, err)
	assert.Equal(t, SourceCreationTime, c.Source)

	c, err = Resolve(path, nil, Options{Location: time.UTC, FilenameDates: true})
	require.NoError(t, err)
	assert.Equal(t, SourceFilename, c.Source)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), c.Time)
}

func TestResolveMissingFile(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "gone.jpg"), nil, Options{})
	assert.Error(t, err)
}

func TestFilenameDate(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"DJI_20250619224111_0001_D.MP4", time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), true},
		{"20250616_C0416.MP4", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), true},
		{"2025-06-19_photo.jpg", time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), true},
		{"holiday.jpg", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := FilenameDate(tt.name, time.UTC)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestReadTagsWithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a jpeg"), 0o644))

	_, err := ReadTags(path)
	assert.Error(t, err)

	_, err = ReadTags(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}
