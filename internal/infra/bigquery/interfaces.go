package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
)

// DefaultDatasetID is the dataset holding the ledger tables.
const DefaultDatasetID = "finance"

// BigQueryLedgerRepository loads ledger snapshots from BigQuery. It holds a
// shared BigQuery client to avoid creating a new connection for each load.
type BigQueryLedgerRepository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewBigQueryLedgerRepository creates a repository reading the ledger tables
// of projectID.datasetID.
func NewBigQueryLedgerRepository(ctx context.Context, projectID, datasetID string) (*BigQueryLedgerRepository, error) {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedgerRepository: creating client: %w", err)
	}
	return &BigQueryLedgerRepository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *BigQueryLedgerRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// table returns the fully qualified, backtick-quoted name of a ledger table.
func (r *BigQueryLedgerRepository) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", r.projectID, r.datasetID, name)
}

// Load implements ledger.Loader. The three tables are read in sequence and
// converted to one snapshot; any row that fails conversion fails the load.
func (r *BigQueryLedgerRepository) Load(ctx context.Context) (*domain.Ledger, error) {
	txRows, err := ListTransactionsWithClient(ctx, r.client, r.table(transactionsTable))
	if err != nil {
		return nil, err
	}
	categoryRows, err := ListCategoriesWithClient(ctx, r.client, r.table(categoriesTable))
	if err != nil {
		return nil, err
	}
	budgetRows, err := ListBudgetsWithClient(ctx, r.client, r.table(budgetsTable))
	if err != nil {
		return nil, err
	}
	return toLedger(txRows, categoryRows, budgetRows)
}

var _ ledger.Loader = (*BigQueryLedgerRepository)(nil)
