package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-insights/internal/analytics"
	"github.com/dvloznov/finance-insights/internal/api"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/notify"
	"github.com/dvloznov/finance-insights/internal/source"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration from the environment; flags override it.
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log, err := logger.NewWithLevel(cfg.LogLevel)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid LOG_LEVEL")
	}

	// Amounts are serialised as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := source.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.LedgerSource).Msg("Failed to open ledger source")
	}
	defer src.Close()

	opts := []analytics.Option{analytics.WithLogger(log)}
	if !cfg.ReferenceDate.IsZero() {
		opts = append(opts, analytics.WithReferenceDate(cfg.ReferenceDate))
		log.Info().Str("reference_date", cfg.ReferenceDate.Format(time.DateOnly)).Msg("Reference date pinned")
	}
	engine := analytics.NewEngine(src.Loader, opts...)

	// Drop the cached snapshot whenever a new ledger is published.
	if cfg.QueueURL != "" && src.Cache != nil {
		updates, err := notify.NewAzureQueue(ctx, cfg.QueueURL, cfg.QueueName, cfg.QueuePollInterval, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to ledger update queue")
		}
		go updates.Watch(ctx, func(ctx context.Context, ev notify.LedgerUpdated) error {
			log.Info().Str("event_id", ev.EventID).Str("uri", ev.URI).Msg("Ledger updated, invalidating cache")
			return src.Cache.Invalidate(ctx)
		})
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      api.NewRouter(engine, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
