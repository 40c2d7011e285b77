package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
)

// Engine answers analytics queries against ledger snapshots. Every query
// loads its own snapshot and computes synchronously; the engine holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	loader        ledger.Loader
	referenceDate time.Time
	log           zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithReferenceDate pins "today" to date. Without it the engine uses the most
// recent transaction date of each loaded ledger.
func WithReferenceDate(date time.Time) Option {
	return func(e *Engine) {
		e.referenceDate = date
	}
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates an engine reading snapshots from loader.
func NewEngine(loader ledger.Loader, opts ...Option) *Engine {
	e := &Engine{
		loader: loader,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// snapshot loads one ledger and resolves the reference date for it.
func (e *Engine) snapshot(ctx context.Context) (*domain.Ledger, time.Time, error) {
	l, err := e.loader.Load(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load ledger: %w", err)
	}

	ref := e.referenceDate
	if ref.IsZero() {
		ref = l.LatestDate()
	}

	log := logger.FromContextOr(ctx, e.log)
	log.Debug().
		Int("transactions", len(l.Transactions)).
		Int("categories", len(l.Categories)).
		Str("reference_date", ref.Format(time.DateOnly)).
		Msg("Ledger snapshot loaded")

	return l, ref, nil
}
