package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleLedger), 0o600))

	l, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, l.Transactions, 2)
}

func TestFileLoader_Missing(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.json")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// mockFetcher serves fixed bytes for one URI.
type mockFetcher struct {
	uri  string
	data []byte
	err  error
}

func (m *mockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if uri != m.uri {
		return nil, errors.New("object not found: " + uri)
	}
	return m.data, nil
}

func TestObjectLoader(t *testing.T) {
	fetcher := &mockFetcher{uri: "gs://ledgers/ledger.json", data: []byte(sampleLedger)}

	l, err := NewObjectLoader(fetcher, "gs://ledgers/ledger.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dining", l.CategoryName("dining"))
}

func TestObjectLoader_FetchError(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("permission denied")}

	_, err := NewObjectLoader(fetcher, "gs://ledgers/ledger.json").Load(context.Background())
	assert.ErrorContains(t, err, "gs://ledgers/ledger.json")
	assert.ErrorContains(t, err, "permission denied")
}

func TestStatic(t *testing.T) {
	want := &domain.Ledger{}
	got, err := Static(want).Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
