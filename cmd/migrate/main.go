package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dvloznov/finance-insights/internal/infra/sqlstore"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
)

type options struct {
	database   string
	dsn        string
	importPath string
}

func main() {
	var opts options
	flag.StringVar(&opts.database, "db", "sqlite", "Database: postgres or sqlite")
	flag.StringVar(&opts.dsn, "dsn", os.Getenv("DATABASE_URL"), "Connection URL or SQLite file path (or set DATABASE_URL env)")
	flag.StringVar(&opts.importPath, "import", "", "Optional JSON ledger file to import after migrating")
	flag.Parse()

	log := logger.New()

	if err := run(context.Background(), opts, log); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

func run(ctx context.Context, opts options, log zerolog.Logger) error {
	dialect, err := sqlstore.ParseDialect(opts.database)
	if err != nil {
		return err
	}
	if opts.dsn == "" {
		if dialect != sqlstore.SQLite {
			return fmt.Errorf("-dsn is required for %s", dialect)
		}
		opts.dsn = "./data/ledger.db"
	}

	store, err := sqlstore.Open(ctx, dialect, opts.dsn, log)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info().Str("database", string(dialect)).Msg("Connected")

	applied, err := store.Migrate(ctx)
	if err != nil {
		return err
	}
	if applied == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else {
		log.Info().Int("applied", applied).Msg("Migrations applied")
	}

	if opts.importPath == "" {
		return nil
	}

	l, err := ledger.NewFileLoader(opts.importPath).Load(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	return store.Import(ctx, l)
}
