package server

import "github.com/jaki95/video-workbench/internal/domain"

// PreviewRequest asks for a URL to be resolved, downloaded and registered.
type PreviewRequest struct {
	URL string `json:"url" binding:"required"`
}

// VideoRequest asks for the full video or, when a range is given, a clip.
type VideoRequest struct {
	URL   string   `json:"url" binding:"required"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// SegmentsRequest lists the clips recorded for a title.
type SegmentsRequest struct {
	Title string `json:"title" binding:"required"`
}

// FinishRequest finalizes a title's whole working set.
type FinishRequest struct {
	Title string `json:"title" binding:"required"`
}

// ProcessRequest runs a derived operation against the latest artifact.
type ProcessRequest struct {
	Action string `json:"action" binding:"required"`
}

// VideoResponse is returned by preview and clip requests.
type VideoResponse struct {
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

// SegmentEntry is one clip in a segments listing.
type SegmentEntry struct {
	Title string  `json:"title"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	URL   string  `json:"url"`
}

// SegmentsResponse lists a title's clips in creation order.
type SegmentsResponse struct {
	Segments []SegmentEntry `json:"segments"`
}

// ProcessResponse reports the outcome of a derived operation.
type ProcessResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FilePath string `json:"file_path,omitempty"`
}

// MessageResponse carries a plain informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a failure description.
type ErrorResponse struct {
	Error string `json:"error"`
}

func segmentEntries(segments []domain.Segment) []SegmentEntry {
	entries := make([]SegmentEntry, 0, len(segments))
	for _, segment := range segments {
		entries = append(entries, SegmentEntry{
			Title: segment.Title,
			Start: segment.Start,
			End:   segment.End,
			URL:   "/downloads/" + baseName(segment.Path),
		})
	}
	return entries
}
