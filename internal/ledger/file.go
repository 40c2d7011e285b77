package ledger

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// FileLoader reads a JSON ledger from the local filesystem on every Load.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the ledger file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load implements Loader.
func (f *FileLoader) Load(ctx context.Context) (*domain.Ledger, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("FileLoader: reading %q: %w", f.path, err)
	}
	return Decode(bytes.NewReader(data))
}

var _ Loader = (*FileLoader)(nil)
