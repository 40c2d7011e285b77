package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	transactionsTable = "transactions"
	categoriesTable   = "categories"
	budgetsTable      = "budgets"
)

// ListTransactionsWithClient reads every ledger transaction from table using
// the provided BigQuery client, oldest first.
func ListTransactionsWithClient(ctx context.Context, client *bigquery.Client, table string) ([]*TransactionRow, error) {
	q := client.Query(`
		SELECT
			transaction_id,
			transaction_date,
			description,
			amount,
			category_id,
			account_id,
			transaction_type,
			merchant_name,
			merchant_location,
			notes,
			tags
		FROM ` + table + `
		ORDER BY transaction_date, transaction_id
	`)
	return readRows[TransactionRow](ctx, q, "ListTransactions")
}

// ListCategoriesWithClient reads the category registry from table using the
// provided BigQuery client, ordered by name.
func ListCategoriesWithClient(ctx context.Context, client *bigquery.Client, table string) ([]*CategoryRow, error) {
	q := client.Query(`
		SELECT
			category_id,
			parent_category_id,
			name,
			category_type,
			icon,
			color
		FROM ` + table + `
		ORDER BY name
	`)
	return readRows[CategoryRow](ctx, q, "ListCategories")
}

// ListBudgetsWithClient reads every budget from table using the provided
// BigQuery client.
func ListBudgetsWithClient(ctx context.Context, client *bigquery.Client, table string) ([]*BudgetRow, error) {
	q := client.Query(`
		SELECT
			budget_id,
			category_id,
			period,
			monthly_limit,
			spent,
			remaining
		FROM ` + table + `
		ORDER BY period, category_id
	`)
	return readRows[BudgetRow](ctx, q, "ListBudgets")
}

func readRows[T any](ctx context.Context, q *bigquery.Query, op string) ([]*T, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rows []*T
	for {
		var r T
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iter next: %w", op, err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
