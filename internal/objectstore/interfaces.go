package objectstore

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Fetch when the bucket or container has no
// object at the requested URI.
var ErrObjectNotFound = errors.New("object not found")

// Store provides access to ledger objects held in cloud storage.
// This interface enables mocking and testing of storage functionality.
type Store interface {
	// Fetch downloads the object bytes at uri.
	Fetch(ctx context.Context, uri string) ([]byte, error)

	// UploadFile uploads a local file to uri.
	UploadFile(ctx context.Context, uri, filePath string) error
}
