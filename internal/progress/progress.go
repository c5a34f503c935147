// Package progress normalizes raw downloader events into the fields stored
// on a job record.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joyersch/jellydump/internal/downloader"
	"github.com/Joyersch/jellydump/internal/registry"
)

const (
	gib = 1 << 30
	mib = 1 << 20
	kib = 1 << 10
)

// Percent computes the integer download percentage, 0 when the total is
// unknown.
func Percent(downloaded, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(downloaded * 100 / total)
}

// FormatSpeed renders a byte rate with binary magnitude units. Unknown or
// zero rates yield the empty string.
func FormatSpeed(bytesPerSec float64) string {
	switch {
	case bytesPerSec <= 0:
		return ""
	case bytesPerSec >= gib:
		return fmt.Sprintf("%.2f GiB/s", bytesPerSec/gib)
	case bytesPerSec >= mib:
		return fmt.Sprintf("%.2f MiB/s", bytesPerSec/mib)
	case bytesPerSec >= kib:
		return fmt.Sprintf("%.2f KiB/s", bytesPerSec/kib)
	default:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	}
}

// CountMediaFiles counts files in dir with the given extension (leading dot,
// case-insensitive). Not recursive. A missing directory counts as zero so the
// hook can run before the first file lands.
func CountMediaFiles(dir, ext string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			count++
		}
	}
	return count
}

// Hook returns the progress callback for one job. Events that are neither
// "downloading" nor "finished" are dropped. The completed-episode count is
// re-derived from the season directory on every event rather than counted
// up, so it stays correct no matter how many events fire per file.
func Hook(reg *registry.Registry, jobID, seasonDir, mediaExt string) downloader.ProgressFunc {
	return func(ev downloader.ProgressEvent) {
		if ev.Status != downloader.StatusDownloading && ev.Status != downloader.StatusFinished {
			return
		}

		percent := Percent(ev.DownloadedBytes, ev.TotalBytes)
		episode := CountMediaFiles(seasonDir, mediaExt)

		reg.Update(jobID, registry.Update{
			ProgressPercent: registry.Ptr(percent),
			CurrentTitle:    registry.Ptr(ev.Title),
			Speed:           registry.Ptr(FormatSpeed(ev.BytesPerSecond)),
			CurrentEpisode:  registry.Ptr(episode),
		})
	}
}
