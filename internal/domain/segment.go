package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// SegmentExtension is the fixed container extension for derived clips.
const SegmentExtension = "mp4"

// SegmentFileName builds the on-disk name for a clip of the given title:
// {sanitizedTitle}_{start}-{end}.mp4. Start and end are formatted without
// trailing zeros so that integral seconds stay integral ("10", not "10.000").
// The name is the only place the clip's time range is persisted; it must
// round-trip through ParseSegmentFileName.
func SegmentFileName(sanitizedTitle string, start, end float64) string {
	return fmt.Sprintf("%s_%s-%s.%s",
		sanitizedTitle,
		FormatSeconds(start),
		FormatSeconds(end),
		SegmentExtension,
	)
}

// FormatSeconds renders a second count without trailing zeros, the single
// encoding shared by segment filenames and ffmpeg time arguments.
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseSegmentFileName recovers the (start, end) pair encoded in a segment
// filename belonging to sanitizedTitle. It is strict: the name must carry the
// exact title prefix, the fixed extension, and two non-negative second values
// separated by a single dash. Malformed names return ok=false.
func ParseSegmentFileName(sanitizedTitle, filename string) (start, end float64, ok bool) {
	base := filepath.Base(filename)

	suffix, found := strings.CutPrefix(base, sanitizedTitle+"_")
	if !found {
		return 0, 0, false
	}

	stem, found := strings.CutSuffix(suffix, "."+SegmentExtension)
	if !found {
		return 0, 0, false
	}

	startStr, endStr, found := strings.Cut(stem, "-")
	if !found {
		return 0, 0, false
	}

	start, err := parseSeconds(startStr)
	if err != nil {
		return 0, 0, false
	}
	end, err = parseSeconds(endStr)
	if err != nil {
		return 0, 0, false
	}

	return start, end, true
}

// parseSeconds accepts integral or decimal seconds, nothing else. A stray "-"
// inside either half (negative values, extra separators) fails the parse.
func parseSeconds(s string) (float64, error) {
	if s == "" || strings.ContainsAny(s, "-+eE") {
		return 0, fmt.Errorf("malformed seconds value: %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// IsOwnedSegment reports whether filename is a derived clip belonging to
// sanitizedTitle. Finalization sweeps on this predicate independently of what
// the registry currently tracks.
func IsOwnedSegment(sanitizedTitle, filename string) bool {
	_, _, ok := ParseSegmentFileName(sanitizedTitle, filename)
	return ok
}
