// Package downloader wraps the external download-and-transcode tool behind a
// narrow interface so the runner and its tests never touch yt-dlp directly.
package downloader

import (
	"context"
)

// Event statuses surfaced to the progress hook. Anything else the tool emits
// is passed through verbatim and ignored downstream.
const (
	StatusDownloading = "downloading"
	StatusFinished    = "finished"
)

// ProgressEvent is one raw progress report from the external tool.
type ProgressEvent struct {
	Status          string
	DownloadedBytes int64
	// TotalBytes is the known total or the tool's estimate; 0 when unknown.
	TotalBytes int64
	// Title is the human-readable label of the unit being processed.
	Title string
	// BytesPerSecond is the transfer rate; 0 when unknown.
	BytesPerSecond float64
}

// ProgressFunc receives progress events on the downloader's own goroutine.
// Implementations must stay cheap; they run inline with the download.
type ProgressFunc func(ProgressEvent)

// Options configures a single download run.
type Options struct {
	// OutputTemplate is a yt-dlp output template, including the destination
	// directory and the %(autonumber)/%(ext) placeholders.
	OutputTemplate string
	// Format is the format selection policy.
	Format string
	// Container is the target container for merging and recoding.
	Container string
}

// Downloader fetches, converts and writes media for a URL, reporting progress
// zero or more times along the way. A nil error means the whole workflow
// completed.
type Downloader interface {
	Download(ctx context.Context, url string, opts Options, progress ProgressFunc) error
}
