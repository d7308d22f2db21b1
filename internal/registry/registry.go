// Package registry tracks, per sanitized title, the original downloaded file
// and every derived clip produced from it. It is the sole authority for
// deciding when those files are deleted: finalizing a title removes the
// original, sweeps every owned segment file on disk, and drops the record.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jaki95/video-workbench/internal/domain"
)

var ErrUnknownTitle = fmt.Errorf("unknown title")

// record is the artifact set for one sanitized title. Its mutex serializes
// segment appends and the finalization sweep; the registry map mutex only
// guards key lookup, so operations on different titles never block each
// other.
type record struct {
	mu           sync.Mutex
	originalPath string
	segments     []string
}

// Registry is the in-memory, title-keyed artifact store shared by all
// request workers.
type Registry struct {
	mu      sync.Mutex
	records map[string]*record
}

func New() *Registry {
	return &Registry{
		records: make(map[string]*record),
	}
}

// Register creates the artifact record for a sanitized title. Registration is
// idempotent: if a record already exists it is left unchanged, including its
// original path.
func (r *Registry) Register(sanitizedTitle, originalPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[sanitizedTitle]; exists {
		return
	}

	r.records[sanitizedTitle] = &record{originalPath: originalPath}
	slog.Debug("Registered title", "title", sanitizedTitle, "original", originalPath)
}

// Has reports whether a record exists for the sanitized title.
func (r *Registry) Has(sanitizedTitle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.records[sanitizedTitle]
	return exists
}

// OriginalPath returns the original file path registered for the title.
func (r *Registry) OriginalPath(sanitizedTitle string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[sanitizedTitle]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnknownTitle, sanitizedTitle)
	}
	return rec.originalPath, nil
}

// lookup fetches the record for a title under the map lock.
func (r *Registry) lookup(sanitizedTitle string) (*record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[sanitizedTitle]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTitle, sanitizedTitle)
	}
	return rec, nil
}

// isCurrent reports whether rec is still the live record for the title. A
// record that lost the race against Finalize is stale and must not be
// mutated further.
func (r *Registry) isCurrent(sanitizedTitle string, rec *record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[sanitizedTitle] == rec
}

// AddSegment appends a derived clip path to the title's record, in creation
// order. The title must already be registered; appending to an unknown or
// concurrently finalized title fails with ErrUnknownTitle.
func (r *Registry) AddSegment(sanitizedTitle, segmentPath string) error {
	rec, err := r.lookup(sanitizedTitle)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !r.isCurrent(sanitizedTitle, rec) {
		return fmt.Errorf("%w: %s", ErrUnknownTitle, sanitizedTitle)
	}

	rec.segments = append(rec.segments, segmentPath)
	slog.Debug("Added segment", "title", sanitizedTitle, "segment", segmentPath)
	return nil
}

// ListSegments returns the title's tracked segments in creation order. The
// start/end pair of each entry is re-derived from its filename; entries whose
// name does not round-trip through the segment filename encoding are skipped.
// An unknown title yields an empty list, not an error.
func (r *Registry) ListSegments(sanitizedTitle string) []domain.Segment {
	rec, err := r.lookup(sanitizedTitle)
	if err != nil {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	segments := make([]domain.Segment, 0, len(rec.segments))
	for _, path := range rec.segments {
		start, end, ok := domain.ParseSegmentFileName(sanitizedTitle, path)
		if !ok {
			slog.Warn("Skipping segment with malformed filename", "title", sanitizedTitle, "path", path)
			continue
		}
		segments = append(segments, domain.Segment{
			Title: sanitizedTitle,
			Start: start,
			End:   end,
			Path:  path,
		})
	}
	return segments
}

// Finalize discards the title's whole working set: the original file, every
// on-disk file matching the owned-segment pattern in the original's directory
// (whether or not the record tracks it), and finally the record itself.
//
// Already-missing files are tolerated. A deletion that fails for any other
// reason aborts finalization before the record is removed, so the operation
// can be retried; files deleted before the failure stay deleted.
func (r *Registry) Finalize(sanitizedTitle string) error {
	rec, err := r.lookup(sanitizedTitle)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !r.isCurrent(sanitizedTitle, rec) {
		return fmt.Errorf("%w: %s", ErrUnknownTitle, sanitizedTitle)
	}

	if err := removeIfPresent(rec.originalPath); err != nil {
		return fmt.Errorf("failed to delete original file: %w", err)
	}
	slog.Info("Deleted original file", "title", sanitizedTitle, "path", rec.originalPath)

	if err := r.sweepSegments(sanitizedTitle, filepath.Dir(rec.originalPath)); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.records, sanitizedTitle)
	r.mu.Unlock()

	slog.Info("Finalized title", "title", sanitizedTitle)
	return nil
}

// sweepSegments deletes every owned segment file in dir. The sweep works off
// the directory listing rather than the tracked segment list so files that
// escaped tracking are still cleaned up.
func (r *Registry) sweepSegments(sanitizedTitle, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to scan artifact directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !domain.IsOwnedSegment(sanitizedTitle, entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := removeIfPresent(path); err != nil {
			return fmt.Errorf("failed to delete segment file %s: %w", path, err)
		}
		slog.Info("Deleted segment file", "title", sanitizedTitle, "path", path)
	}
	return nil
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
