package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/analytics"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/notify"
	"github.com/dvloznov/finance-insights/internal/objectstore"
	"github.com/dvloznov/finance-insights/internal/source"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	log, err := logger.NewWithLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log = logger.New()
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	decimal.MarshalJSONWithoutQuotes = true

	switch os.Args[1] {
	case "trends":
		runTrends(log)
	case "outliers":
		runOutliers(log)
	case "snapshot":
		runSnapshot(log)
	case "snapshots":
		runSnapshots(log)
	case "summary":
		runSummary(log)
	case "expenses":
		runExpenses(log)
	case "inspect":
		runInspect(log)
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  trends     Spending trends per category for the current period")
	fmt.Println("  outliers   Categories deviating from their trailing average")
	fmt.Println("  snapshot   Income, spending and largest category for one month")
	fmt.Println("  snapshots  Consecutive monthly snapshots, oldest first")
	fmt.Println("  summary    Net totals per category over recent months")
	fmt.Println("  expenses   Monthly expenses by category for the last year")
	fmt.Println("  inspect    Show what the configured ledger source contains")
	fmt.Println("  upload     Upload a ledger JSON file to GCS or Azure Blob Storage")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nThe ledger source is configured through the environment (LEDGER_SOURCE, LEDGER_PATH, ...).")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// sourceFlags are shared by every command that reads the ledger.
type sourceFlags struct {
	ledgerPath    *string
	referenceDate *string
}

func addSourceFlags(fs *flag.FlagSet) sourceFlags {
	return sourceFlags{
		ledgerPath:    fs.String("ledger", "", "Path to a JSON ledger file (overrides LEDGER_SOURCE)"),
		referenceDate: fs.String("date", "", "Reference date YYYY-MM-DD (defaults to REFERENCE_DATE or the latest transaction)"),
	}
}

// openEngine builds an engine over the configured ledger source. The
// returned function releases the source.
func openEngine(ctx context.Context, log zerolog.Logger, sf sourceFlags) (*analytics.Engine, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *sf.ledgerPath != "" {
		cfg.LedgerSource = config.SourceFile
		cfg.LedgerPath = *sf.ledgerPath
	}
	if *sf.referenceDate != "" {
		ref, err := time.Parse(time.DateOnly, *sf.referenceDate)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -date")
		}
		cfg.ReferenceDate = ref
	}

	src, err := source.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.LedgerSource).Msg("Failed to open ledger source")
	}

	opts := []analytics.Option{analytics.WithLogger(log)}
	if !cfg.ReferenceDate.IsZero() {
		opts = append(opts, analytics.WithReferenceDate(cfg.ReferenceDate))
	}
	return analytics.NewEngine(src.Loader, opts...), func() { src.Close() }
}

func printJSON(log zerolog.Logger, v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}
}

func runTrends(log zerolog.Logger) {
	fs := flag.NewFlagSet("trends", flag.ExitOnError)
	sf := addSourceFlags(fs)
	categoryID := fs.String("category", "", "Category ID (defaults to all categories)")
	periodType := fs.String("period-type", "month", "Period type: month or quarter")
	fs.Parse(os.Args[2:])

	pt, err := analytics.ParsePeriodType(*periodType)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -period-type")
	}

	ctx := logger.WithContext(context.Background(), log)
	engine, closeSource := openEngine(ctx, log, sf)
	defer closeSource()

	trends, err := engine.CategoryTrends(ctx, analytics.TrendQuery{CategoryID: *categoryID, PeriodType: pt})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute category trends")
	}
	printJSON(log, trends)
}

func runOutliers(log zerolog.Logger) {
	fs := flag.NewFlagSet("outliers", flag.ExitOnError)
	sf := addSourceFlags(fs)
	periodType := fs.String("period-type", "month", "Period type: month or quarter")
	direction := fs.String("direction", "both", "Direction filter: increase, decrease or both")
	threshold := fs.Float64("threshold", analytics.DefaultThresholdPercent, "Minimum absolute deviation in percent")
	fs.Parse(os.Args[2:])

	q := analytics.DefaultOutlierQuery()
	var err error
	if q.PeriodType, err = analytics.ParsePeriodType(*periodType); err != nil {
		log.Fatal().Err(err).Msg("Invalid -period-type")
	}
	if q.Direction, err = analytics.ParseDirectionFilter(*direction); err != nil {
		log.Fatal().Err(err).Msg("Invalid -direction")
	}
	q.ThresholdPercent = *threshold

	ctx := logger.WithContext(context.Background(), log)
	engine, closeSource := openEngine(ctx, log, sf)
	defer closeSource()

	outliers, err := engine.FindOutliers(ctx, q)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to find spending outliers")
	}
	printJSON(log, outliers)
}

func runSnapshot(log zerolog.Logger) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	sf := addSourceFlags(fs)
	month := fs.String("month", "", "Month YYYY-MM (defaults to the reference month)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	engine, closeSource := openEngine(ctx, log, sf)
	defer closeSource()

	snapshot, err := engine.MonthlySnapshot(ctx, *month)
	if err != nil {
		log.Fatal().Err(err).Str("month", *month).Msg("Failed to build monthly snapshot")
	}
	printJSON(log, snapshot)
}

func runSnapshots(log zerolog.Logger) {
	fs := flag.NewFlagSet("snapshots", flag.ExitOnError)
	sf := addSourceFlags(fs)
	count := fs.Int("count", analytics.DefaultSnapshotCount, "Number of months")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	engine, closeSource := openEngine(ctx, log, sf)
	defer closeSource()

	snapshots, err := engine.MonthlySnapshots(ctx, *count)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build monthly snapshots")
	}
	printJSON(log, snapshots)
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	sf := addSourceFlags(fs)
	months := fs.Int("months", analytics.DefaultSummaryMonths, "Number of months to cover")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	engine, closeSource := openEngine(ctx, log, sf)
	defer closeSource()

	summaries, err := engine.CategorySummaries(ctx, *months)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to summarise categories")
	}
	printJSON(log, summaries)
}

func runExpenses(log zerolog.Logger) {
	fs := flag.NewFlagSet("expenses", flag.ExitOnError)
	sf := addSourceFlags(fs)
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	engine, closeSource := openEngine(ctx, log, sf)
	defer closeSource()

	expenses, err := engine.MonthlyExpensesByCategory(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list monthly expenses")
	}
	printJSON(log, expenses)
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	ledgerPath := fs.String("ledger", "", "Path to a JSON ledger file (overrides LEDGER_SOURCE)")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *ledgerPath != "" {
		cfg.LedgerSource = config.SourceFile
		cfg.LedgerPath = *ledgerPath
	}

	ctx := logger.WithContext(context.Background(), log)
	src, err := source.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger source")
	}
	defer src.Close()

	l, err := src.Loader.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	fmt.Println("\n=== Ledger ===")
	fmt.Printf("Source:       %s\n", cfg.LedgerSource)
	fmt.Printf("Transactions: %d\n", len(l.Transactions))
	fmt.Printf("Categories:   %d\n", len(l.Categories))
	fmt.Printf("Budgets:      %d\n", len(l.Budgets))
	if latest := l.LatestDate(); !latest.IsZero() {
		fmt.Printf("Latest date:  %s\n", latest.Format(time.DateOnly))
	}

	fmt.Printf("\n=== Categories (%d) ===\n", len(l.Categories))
	for _, c := range l.Categories {
		fmt.Printf("  %-20s %-24s %s\n", c.ID, c.Name, c.Type)
	}
	fmt.Println()
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local ledger JSON file")
	dest := fs.String("to", "", "Destination: gs://bucket/object or https://<account>.blob.core.windows.net/<container>/<blob>")
	queueURL := fs.String("notify", os.Getenv("QUEUE_URL"), "Queue service URL to announce the upload on (or set QUEUE_URL env)")
	queueName := fs.String("queue", notify.DefaultQueueName, "Queue name")
	fs.Parse(os.Args[2:])

	if *filePath == "" || *dest == "" {
		log.Fatal().Msg("Usage: cli upload -file PATH -to URI")
	}

	ctx := logger.WithContext(context.Background(), log)

	// Refuse to publish a file the loaders could not read back.
	if _, err := ledger.NewFileLoader(*filePath).Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Ledger file is invalid")
	}

	var store objectstore.Store
	if strings.HasPrefix(*dest, "gs://") {
		gcs, err := objectstore.NewGCS(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS client")
		}
		defer gcs.Close()
		store = gcs
	} else {
		container, _, err := objectstore.ParseBlobURI(*dest)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid destination")
		}
		serviceURL := strings.SplitN(*dest, "/"+container+"/", 2)[0]
		blob, err := objectstore.NewAzureBlob(serviceURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Azure Blob client")
		}
		store = blob
	}

	log.Info().
		Str("file", *filePath).
		Str("destination", *dest).
		Msg("Uploading ledger")

	if err := store.UploadFile(ctx, *dest, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, *dest)

	if *queueURL == "" {
		return
	}
	updates, err := notify.NewAzureQueue(ctx, *queueURL, *queueName, 0, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ledger update queue")
	}
	if err := updates.Publish(ctx, notify.NewLedgerUpdated(*dest, time.Now())); err != nil {
		log.Fatal().Err(err).Msg("Failed to announce upload")
	}
}
