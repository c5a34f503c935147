package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Joyersch/jellydump/internal/downloader"
	"github.com/Joyersch/jellydump/internal/registry"
)

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"unknown", 0, ""},
		{"negative", -1, ""},
		{"bytes", 500, "500 B/s"},
		{"kib boundary", 1024, "1.00 KiB/s"},
		{"kib", 2048, "2.00 KiB/s"},
		{"mib", 5 * 1024 * 1024, "5.00 MiB/s"},
		{"gib", 3 * 1024 * 1024 * 1024, "3.00 GiB/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatSpeed(tt.rate))
		})
	}
}

func TestPercent(t *testing.T) {
	require.Equal(t, 0, Percent(100, 0))
	require.Equal(t, 0, Percent(100, -1))
	require.Equal(t, 25, Percent(50, 200))
	require.Equal(t, 100, Percent(200, 200))
	// floor, never round up
	require.Equal(t, 33, Percent(1, 3))
}

func TestCountMediaFiles(t *testing.T) {
	dir := t.TempDir()

	touch := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	touch("Show S01E01.mp4")
	touch("Show S01E02.MP4") // extension match is case-insensitive
	touch("Show S01E03.mkv")
	touch("notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "extras.mp4"), 0755)) // dirs don't count

	require.Equal(t, 2, CountMediaFiles(dir, ".mp4"))

	// re-derivation is idempotent
	require.Equal(t, 2, CountMediaFiles(dir, ".mp4"))

	require.Equal(t, 0, CountMediaFiles(filepath.Join(dir, "missing"), ".mp4"))
}

func TestHookWritesNormalizedFields(t *testing.T) {
	reg := registry.New()
	id, err := reg.Create(registry.Request{URL: "https://example.com", IMDBID: "tt1234567", Name: "Show", Season: 1})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Show S01E01.mp4"), nil, 0644))

	hook := Hook(reg, id, dir, ".mp4")
	hook(downloader.ProgressEvent{
		Status:          downloader.StatusDownloading,
		DownloadedBytes: 50,
		TotalBytes:      200,
		Title:           "Episode 2",
		BytesPerSecond:  2048,
	})

	job, err := reg.Get(id)
	require.NoError(t, err)
	require.Equal(t, 25, *job.ProgressPercent)
	require.Equal(t, "Episode 2", job.CurrentTitle)
	require.Equal(t, "2.00 KiB/s", job.Speed)
	require.Equal(t, 1, *job.CurrentEpisode)
}

func TestHookZeroTotal(t *testing.T) {
	reg := registry.New()
	id, err := reg.Create(registry.Request{URL: "https://example.com", IMDBID: "tt1234567", Name: "Show", Season: 1})
	require.NoError(t, err)

	hook := Hook(reg, id, t.TempDir(), ".mp4")
	hook(downloader.ProgressEvent{
		Status:          downloader.StatusDownloading,
		DownloadedBytes: 12345,
	})

	job, err := reg.Get(id)
	require.NoError(t, err)
	require.Equal(t, 0, *job.ProgressPercent)
	require.Empty(t, job.Speed)
}

func TestHookIgnoresOtherStatuses(t *testing.T) {
	reg := registry.New()
	id, err := reg.Create(registry.Request{URL: "https://example.com", IMDBID: "tt1234567", Name: "Show", Season: 1})
	require.NoError(t, err)

	hook := Hook(reg, id, t.TempDir(), ".mp4")
	hook(downloader.ProgressEvent{Status: "post_processing", DownloadedBytes: 50, TotalBytes: 100})
	hook(downloader.ProgressEvent{Status: "error"})

	job, err := reg.Get(id)
	require.NoError(t, err)
	require.Nil(t, job.ProgressPercent)
	require.Nil(t, job.CurrentEpisode)
}
