package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaki95/video-workbench/internal/domain"
)

// LocalStore implements ArtifactStore on the local filesystem. It is the
// default backend: everything lives in one flat downloads directory and
// Export does nothing.
type LocalStore struct {
	downloadDir string
}

// NewLocalStore creates the downloads directory if needed.
func NewLocalStore(downloadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(downloadDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory %s: %w", downloadDir, err)
	}
	return &LocalStore{downloadDir: downloadDir}, nil
}

func (s *LocalStore) DownloadDir() string {
	return s.downloadDir
}

func (s *LocalStore) OriginalPath(sanitizedTitle string) string {
	return filepath.Join(s.downloadDir, sanitizedTitle+"."+domain.SegmentExtension)
}

func (s *LocalStore) SegmentPath(sanitizedTitle string, start, end float64) string {
	return filepath.Join(s.downloadDir, domain.SegmentFileName(sanitizedTitle, start, end))
}

func (s *LocalStore) DerivedPath(name string) string {
	return filepath.Join(s.downloadDir, name)
}

func (s *LocalStore) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *LocalStore) Export(ctx context.Context, localPath string) error {
	return nil
}
