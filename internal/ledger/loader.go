package ledger

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Loader supplies one consistent ledger snapshot per call. Implementations
// must return a ledger that callers may read concurrently and never modify.
type Loader interface {
	Load(ctx context.Context) (*domain.Ledger, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*domain.Ledger, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*domain.Ledger, error) {
	return f(ctx)
}

// Static returns a loader that always yields l.
func Static(l *domain.Ledger) Loader {
	return LoaderFunc(func(context.Context) (*domain.Ledger, error) {
		return l, nil
	})
}
