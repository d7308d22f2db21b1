package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore is a LocalStore that additionally exports finished derived
// outputs to a Google Cloud Storage bucket. Working files stay local; only
// Export touches the bucket.
type GCSStore struct {
	*LocalStore
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSStore creates a GCS-backed store. With an empty credentialsFile the
// client uses application default credentials.
func NewGCSStore(ctx context.Context, downloadDir, bucketName, objectPrefix, credentialsFile string) (*GCSStore, error) {
	local, err := NewLocalStore(downloadDir)
	if err != nil {
		return nil, err
	}

	var client *storage.Client
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		LocalStore:   local,
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

// Export uploads localPath to the bucket under the object prefix, keyed by
// its base name. Derived outputs use fixed names, so each upload overwrites
// the previous result of the same kind, matching the local overwrite policy.
func (s *GCSStore) Export(ctx context.Context, localPath string) error {
	objectName := filepath.Base(localPath)
	if s.objectPrefix != "" {
		objectName = s.objectPrefix + "/" + objectName
	}

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file for export: %w", err)
	}
	defer file.Close()

	writer := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return fmt.Errorf("failed to upload %s to gs://%s/%s: %w", localPath, s.bucket, objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload of %s: %w", localPath, err)
	}

	slog.Info("Exported derived output", "local", localPath, "bucket", s.bucket, "object", objectName)
	return nil
}

// Close releases the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
