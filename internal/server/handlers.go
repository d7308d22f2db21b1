package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/video-workbench/internal/pipeline"
)

// previewVideo resolves a URL, registers the downloaded video and returns
// the playable location. Repeated requests for the same URL are answered
// from the response cache.
func (s *Server) previewVideo(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	entry, err := s.orch.ResolveAndRegister(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, VideoResponse{Title: entry.Title, VideoURL: entry.VideoURL})
}

// getVideo returns the full video for a URL or, when a start/end range is
// supplied, cuts and returns a clip.
func (s *Server) getVideo(c *gin.Context) {
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if (req.Start == nil) != (req.End == nil) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start and end must be supplied together"})
		return
	}

	entry, err := s.orch.ResolveAndRegister(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, err)
		return
	}

	if req.Start == nil {
		c.JSON(http.StatusOK, VideoResponse{Title: entry.Title, VideoURL: entry.VideoURL})
		return
	}

	clipPath, err := s.orch.CreateClip(c.Request.Context(), entry.Title, *req.Start, *req.End)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, VideoResponse{Title: entry.Title, VideoURL: "/downloads/" + baseName(clipPath)})
}

// getSegments lists the clips recorded for a title, oldest first.
func (s *Server) getSegments(c *gin.Context) {
	var req SegmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	segments := s.orch.ListSegments(req.Title)
	c.JSON(http.StatusOK, SegmentsResponse{Segments: segmentEntries(segments)})
}

// finishDownload finalizes a title: the original, every derived clip and the
// matching cache entries are discarded.
func (s *Server) finishDownload(c *gin.Context) {
	var req FinishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if err := s.orch.Finalize(req.Title); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "working set discarded"})
}

// processVideo runs one derived operation against the most recently produced
// video file.
func (s *Server) processVideo(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	op := pipeline.Operation(req.Action)
	outputPath, err := s.orch.RunDerivedOperation(c.Request.Context(), op)
	if err != nil {
		slog.Error("Derived operation failed", "action", req.Action, "error", err)
		c.JSON(statusFor(err), ProcessResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ProcessResponse{
		Success:  true,
		Message:  fmt.Sprintf("%s completed", req.Action),
		FilePath: "/downloads/" + baseName(outputPath),
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
