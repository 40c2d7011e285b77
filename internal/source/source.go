// Package source builds the ledger loader selected by configuration.
package source

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/infra/aztables"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/infra/sqlstore"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/objectstore"
	"github.com/rs/zerolog"
)

// Source is an opened ledger loader together with the resources it holds.
type Source struct {
	Loader ledger.Loader

	// Cache is the Redis layer in front of the source, nil when disabled.
	Cache *ledger.CachedLoader

	closers []func() error
}

// Close releases every client opened for the source, returning the first error.
func (s *Source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open connects to the ledger source named in cfg and, when REDIS_URL is
// set, wraps it with the Redis snapshot cache. An unreachable Redis is
// logged and skipped.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Source, error) {
	s := &Source{}
	log = logger.WithFields(log, map[string]interface{}{"source": cfg.LedgerSource})

	loader, err := s.openLoader(ctx, cfg, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Loader = loader

	if cfg.RedisURL != "" {
		client, err := ledger.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Continuing without Redis cache")
		} else {
			s.closers = append(s.closers, client.Close)
			s.Cache = ledger.NewCachedLoader(loader, client, cfg.CacheTTL, log)
			s.Loader = s.Cache
			log.Info().Dur("ttl", cfg.CacheTTL).Msg("Ledger cache enabled")
		}
	}

	log.Info().Msg("Ledger source ready")
	return s, nil
}

func (s *Source) openLoader(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ledger.Loader, error) {
	switch cfg.LedgerSource {
	case config.SourceFile:
		return ledger.NewFileLoader(cfg.LedgerPath), nil

	case config.SourceGCS:
		gcs, err := objectstore.NewGCS(ctx)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		s.closers = append(s.closers, gcs.Close)
		return ledger.NewObjectLoader(gcs, cfg.GCSURI), nil

	case config.SourceAzure:
		blob, err := objectstore.NewAzureBlob(cfg.AzureBlobURL)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		return ledger.NewObjectLoader(blob, cfg.AzureURI()), nil

	case config.SourceTables:
		repo, err := aztables.NewLedgerRepository(cfg.AzureTableURL, log)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		return repo, nil

	case config.SourceBigQuery:
		repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, cfg.BQProject, cfg.BQDataset)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		s.closers = append(s.closers, repo.Close)
		return repo, nil

	case config.SourcePostgres, config.SourceSQLite:
		dialect, err := sqlstore.ParseDialect(cfg.LedgerSource)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		store, err := sqlstore.Open(ctx, dialect, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		return store, nil

	default:
		return nil, fmt.Errorf("Open: unknown ledger source %q", cfg.LedgerSource)
	}
}
