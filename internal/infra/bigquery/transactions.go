package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Description     string     `bigquery:"description"`      // REQUIRED

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC

	CategoryID      bigquery.NullString `bigquery:"category_id"`      // NULLABLE
	AccountID       bigquery.NullString `bigquery:"account_id"`       // NULLABLE
	TransactionType string              `bigquery:"transaction_type"` // REQUIRED, e.g. credit/debit

	MerchantName     bigquery.NullString `bigquery:"merchant_name"`     // NULLABLE
	MerchantLocation bigquery.NullString `bigquery:"merchant_location"` // NULLABLE
	Notes            bigquery.NullString `bigquery:"notes"`             // NULLABLE

	Tags []string `bigquery:"tags"` // REPEATED STRING
}
