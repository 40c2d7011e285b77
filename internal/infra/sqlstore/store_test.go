package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleLedger() *domain.Ledger {
	parent := "living"
	return &domain.Ledger{
		Transactions: []domain.Transaction{
			{
				ID:          "tx-2",
				Date:        time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC),
				Description: "Rent",
				Amount:      decimal.RequireFromString("-800.00"),
				Category:    "rent",
				Account:     "checking",
				Type:        "debit",
			},
			{
				ID:          "tx-1",
				Date:        time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
				Description: "Salary",
				Amount:      decimal.RequireFromString("3000.00"),
				Category:    "salary",
				Type:        domain.TransactionTypeCredit,
				Tags:        []string{"monthly", "work"},
				Merchant:    &domain.Merchant{Name: "Acme", Location: "London"},
			},
		},
		Categories: []domain.Category{
			{ID: "rent", Name: "Rent", Type: "expense", Parent: &parent, Color: "#e67e22"},
			{ID: "salary", Name: "Salary", Type: "income"},
		},
		Budgets: []domain.Budget{
			{
				ID:           "b-1",
				Category:     "rent",
				Period:       "2025-10",
				MonthlyLimit: decimal.RequireFromString("850.00"),
				Spent:        decimal.RequireFromString("800.00"),
				Remaining:    decimal.RequireFromString("50.00"),
			},
		},
	}
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("Postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestNormalizePostgresURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgresql://u:p@db:5432/finance", "postgres://u:p@db:5432/finance?sslmode=disable"},
		{"postgres://db/finance?connect_timeout=5", "postgres://db/finance?connect_timeout=5&sslmode=disable"},
		{"postgres://db/finance?sslmode=require", "postgres://db/finance?sslmode=require"},
		{"host=db dbname=finance", "host=db dbname=finance"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePostgresURL(tt.in))
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	lite := &Store{dialect: SQLite}
	q := `INSERT INTO t (a, b) VALUES (?, ?)`

	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestMigrations(t *testing.T) {
	for _, d := range []Dialect{Postgres, SQLite} {
		migrations, err := Migrations(d)
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		assert.Equal(t, 1, migrations[0].Version)
		assert.Equal(t, "ledger_schema", migrations[0].Name)
		assert.Len(t, migrations[0].Checksum, 64)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestImportAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Migrate(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Import(ctx, sampleLedger()))
	// Re-importing upserts instead of duplicating.
	require.NoError(t, s.Import(ctx, sampleLedger()))

	l, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, l.Transactions, 2)
	first := l.Transactions[0]
	assert.Equal(t, "tx-1", first.ID, "transactions are ordered by date")
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, []string{"monthly", "work"}, first.Tags)
	require.NotNil(t, first.Merchant)
	assert.Equal(t, "London", first.Merchant.Location)
	assert.True(t, first.IsIncome())

	second := l.Transactions[1]
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(-800)))
	assert.Nil(t, second.Merchant)
	assert.Nil(t, second.Tags)

	require.Len(t, l.Categories, 2)
	assert.Equal(t, "Rent", l.Categories[0].Name)
	require.NotNil(t, l.Categories[0].Parent)
	assert.Equal(t, "living", *l.Categories[0].Parent)
	assert.Nil(t, l.Categories[1].Parent)

	require.Len(t, l.Budgets, 1)
	assert.True(t, l.Budgets[0].MonthlyLimit.Equal(decimal.NewFromInt(850)))
	assert.True(t, l.Budgets[0].Remaining.Equal(decimal.NewFromInt(50)))
}

func TestScanDate(t *testing.T) {
	want := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)

	got, err := scanDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = scanDate([]byte("2025-03-09T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = scanDate(time.Date(2025, time.March, 9, 0, 0, 0, 0, time.FixedZone("x", 3600)))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = scanDate(42)
	assert.Error(t, err)
}

func TestReadMigrations_Pattern(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_budgets.sql":       {Data: []byte("CREATE TABLE b (id TEXT);")},
		"m/0001_init.sql":          {Data: []byte("CREATE TABLE a (id TEXT);")},
		"m/001_invalid.sql":        {Data: []byte("x")},
		"m/0003_missing_extension": {Data: []byte("x")},
		"m/0004.sql":               {Data: []byte("x")},
		"m/invalid_0005_wrong.sql": {Data: []byte("x")},
	}

	migrations, err := readMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, "budgets", migrations[1].Name)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}
