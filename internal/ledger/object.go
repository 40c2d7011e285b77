package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// ObjectFetcher downloads object bytes from a storage URI.
type ObjectFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// ObjectLoader reads a JSON ledger stored as a single object in cloud storage.
type ObjectLoader struct {
	fetcher ObjectFetcher
	uri     string
}

// NewObjectLoader creates a loader for the ledger object at uri.
func NewObjectLoader(fetcher ObjectFetcher, uri string) *ObjectLoader {
	return &ObjectLoader{fetcher: fetcher, uri: uri}
}

// Load implements Loader.
func (o *ObjectLoader) Load(ctx context.Context) (*domain.Ledger, error) {
	data, err := o.fetcher.Fetch(ctx, o.uri)
	if err != nil {
		return nil, fmt.Errorf("ObjectLoader: fetching %s: %w", o.uri, err)
	}
	return Decode(bytes.NewReader(data))
}

var _ Loader = (*ObjectLoader)(nil)
