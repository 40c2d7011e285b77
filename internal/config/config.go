package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Ledger sources accepted in LEDGER_SOURCE.
const (
	SourceFile     = "file"
	SourceGCS      = "gcs"
	SourceAzure    = "azure"
	SourceTables   = "aztables"
	SourceBigQuery = "bigquery"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

type Config struct {
	Port     string
	LogLevel string

	LedgerSource string
	LedgerPath   string

	GCSURI string

	AzureBlobURL   string
	AzureContainer string
	AzureBlob      string

	AzureTableURL string

	BQProject string
	BQDataset string

	DatabaseURL string

	RedisURL string
	CacheTTL time.Duration

	// Ledger update notifications; empty QueueURL disables them.
	QueueURL          string
	QueueName         string
	QueuePollInterval time.Duration

	// ReferenceDate pins "today" for every query; zero means the ledger's
	// latest transaction date.
	ReferenceDate time.Time
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LedgerSource:   strings.ToLower(getEnv("LEDGER_SOURCE", SourceFile)),
		LedgerPath:     getEnv("LEDGER_PATH", "./data/ledger.json"),
		GCSURI:         getEnv("GCS_URI", ""),
		AzureBlobURL:   getEnv("AZURE_BLOB_URL", ""),
		AzureContainer: getEnv("AZURE_CONTAINER", ""),
		AzureBlob:      getEnv("AZURE_BLOB", "ledger.json"),
		AzureTableURL:  getEnv("AZURE_TABLE_URL", ""),
		BQProject:      getEnv("BQ_PROJECT", ""),
		BQDataset:      getEnv("BQ_DATASET", "finance"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		QueueURL:       getEnv("QUEUE_URL", ""),
		QueueName:      getEnv("QUEUE_NAME", "ledger-updates"),
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("Load: CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	poll, err := time.ParseDuration(getEnv("QUEUE_POLL_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("Load: QUEUE_POLL_INTERVAL: %w", err)
	}
	cfg.QueuePollInterval = poll

	if ref := getEnv("REFERENCE_DATE", ""); ref != "" {
		t, err := time.Parse(time.DateOnly, ref)
		if err != nil {
			return nil, fmt.Errorf("Load: REFERENCE_DATE: %w", err)
		}
		cfg.ReferenceDate = t
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected ledger source has what it needs.
func (c *Config) Validate() error {
	switch c.LedgerSource {
	case SourceFile:
		if c.LedgerPath == "" {
			return fmt.Errorf("Validate: LEDGER_PATH is required for source %q", c.LedgerSource)
		}
	case SourceGCS:
		if c.GCSURI == "" {
			return fmt.Errorf("Validate: GCS_URI is required for source %q", c.LedgerSource)
		}
	case SourceAzure:
		if c.AzureBlobURL == "" || c.AzureContainer == "" {
			return fmt.Errorf("Validate: AZURE_BLOB_URL and AZURE_CONTAINER are required for source %q", c.LedgerSource)
		}
	case SourceTables:
		if c.AzureTableURL == "" {
			return fmt.Errorf("Validate: AZURE_TABLE_URL is required for source %q", c.LedgerSource)
		}
	case SourceBigQuery:
		if c.BQProject == "" {
			return fmt.Errorf("Validate: BQ_PROJECT is required for source %q", c.LedgerSource)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("Validate: DATABASE_URL is required for source %q", c.LedgerSource)
		}
	case SourceSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "./data/ledger.db"
		}
	default:
		return fmt.Errorf("Validate: unknown LEDGER_SOURCE %q", c.LedgerSource)
	}
	return nil
}

// AzureURI is the full URL of the ledger blob.
func (c *Config) AzureURI() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.AzureBlobURL, "/"), c.AzureContainer, c.AzureBlob)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
