package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// GCS is the Google Cloud Storage implementation of Store. It assumes
// Application Default Credentials are configured.
type GCS struct {
	client *storage.Client
}

// NewGCS creates a GCS store with a shared storage client.
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCS: creating storage client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Close closes the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Fetch downloads the object at a gs://bucket/path URI.
func (g *GCS) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("GCS.Fetch: %s/%s: %w", bucket, object, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GCS.Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("GCS.Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// UploadFile uploads a local file to a gs://bucket/path URI.
func (g *GCS) UploadFile(ctx context.Context, uri, filePath string) error {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object name.
func ParseGCSURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return bucket, object, nil
}

var _ Store = (*GCS)(nil)
