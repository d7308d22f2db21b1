// Package resolver turns a remote video URL into a downloaded local file and
// a human-readable title. The orchestrator only depends on the Resolver
// interface; HTTPResolver is the default implementation for direct media
// links and simple video pages.
package resolver

import (
	"context"
	"fmt"
)

// ErrResolution is the collaborator failure class: network or parse errors
// while resolving a URL.
var ErrResolution = fmt.Errorf("failed to resolve video")

// Result is a successfully resolved video.
type Result struct {
	// Title is the human-readable title, not yet sanitized.
	Title string
	// LocalPath is the absolute path of the downloaded file.
	LocalPath string
}

// Resolver fetches a remote video and stores it locally.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Result, error)
}
