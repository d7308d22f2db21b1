// Package storage defines where artifacts live on disk and, optionally,
// where finished derived outputs are exported.
package storage

import "context"

// ArtifactStore computes artifact locations inside the flat downloads
// directory and exports derived processing outputs.
type ArtifactStore interface {
	// DownloadDir is the single flat directory holding originals, segments
	// and derived outputs.
	DownloadDir() string

	// OriginalPath is the location of a title's downloaded source file.
	OriginalPath(sanitizedTitle string) string

	// SegmentPath is the location of a clip of the title, encoded with the
	// segment filename scheme.
	SegmentPath(sanitizedTitle string, start, end float64) string

	// DerivedPath is the location of a fixed-name derived output
	// (vocal_removed.wav, subtitle.srt, video_enhanced.mp4).
	DerivedPath(name string) string

	// FileExists reports whether path exists and is a regular file.
	FileExists(path string) bool

	// Export publishes a finished derived output. Local storage is a no-op;
	// remote backends upload the file.
	Export(ctx context.Context, localPath string) error
}
