// Package aztables reads ledger snapshots from Azure Table Storage.
package aztables

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/rs/zerolog"
)

// Table names.
const (
	TransactionsTable = "transactions"
	CategoriesTable   = "categories"
	BudgetsTable      = "budgets"
)

// LedgerRepository loads the ledger from three tables under one storage
// account. Transactions are partitioned by month (YYYY-MM) and keyed by id.
type LedgerRepository struct {
	client *aztables.ServiceClient
	log    zerolog.Logger
}

// NewLedgerRepository creates a repository for the table service at
// serviceURL using the default Azure credential chain.
func NewLedgerRepository(serviceURL string, log zerolog.Logger) (*LedgerRepository, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("NewLedgerRepository: default credential: %w", err)
	}
	client, err := aztables.NewServiceClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("NewLedgerRepository: creating table service client: %w", err)
	}
	return &LedgerRepository{client: client, log: log}, nil
}

// Load reads every table into one ledger snapshot.
func (r *LedgerRepository) Load(ctx context.Context) (*domain.Ledger, error) {
	txEntities, err := r.list(ctx, TransactionsTable)
	if err != nil {
		return nil, err
	}
	categoryEntities, err := r.list(ctx, CategoriesTable)
	if err != nil {
		return nil, err
	}
	budgetEntities, err := r.list(ctx, BudgetsTable)
	if err != nil {
		return nil, err
	}

	l, err := toLedger(txEntities, categoryEntities, budgetEntities)
	if err != nil {
		return nil, fmt.Errorf("LedgerRepository.Load: %w", err)
	}

	r.log.Debug().
		Int("transactions", len(l.Transactions)).
		Int("categories", len(l.Categories)).
		Int("budgets", len(l.Budgets)).
		Msg("Ledger loaded from table storage")
	return l, nil
}

// list returns the raw JSON of every entity in table.
func (r *LedgerRepository) list(ctx context.Context, table string) ([][]byte, error) {
	pager := r.client.NewClient(table).NewListEntitiesPager(nil)

	var entities [][]byte
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("LedgerRepository.list: %s: %w", table, err)
		}
		entities = append(entities, resp.Entities...)
	}
	return entities, nil
}

var _ ledger.Loader = (*LedgerRepository)(nil)
