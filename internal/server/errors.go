package server

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/jaki95/video-workbench/internal/pipeline"
	"github.com/jaki95/video-workbench/internal/procsvc"
	"github.com/jaki95/video-workbench/internal/registry"
	"github.com/jaki95/video-workbench/internal/resolver"
	"github.com/jaki95/video-workbench/internal/transcode"
)

// statusFor maps pipeline failures to HTTP status codes: caller mistakes are
// 4xx, collaborator failures keep their upstream flavor (502/503), anything
// else is a plain 500.
func statusFor(err error) int {
	var serviceErr *procsvc.ServiceError

	switch {
	case errors.Is(err, transcode.ErrInvalidRange),
		errors.Is(err, procsvc.ErrInvalidFormat),
		errors.Is(err, procsvc.ErrInvalidReturnType),
		errors.Is(err, pipeline.ErrUnknownOperation):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrUnknownTitle),
		errors.Is(err, pipeline.ErrNoArtifacts):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrResolution):
		return http.StatusBadGateway
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway
	case errors.Is(err, procsvc.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func baseName(path string) string {
	return filepath.Base(path)
}
