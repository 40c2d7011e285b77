package bigquery

import "math/big"

type BudgetRow struct {
	BudgetID   string `bigquery:"budget_id"`   // REQUIRED
	CategoryID string `bigquery:"category_id"` // REQUIRED
	Period     string `bigquery:"period"`      // REQUIRED, YYYY-MM

	MonthlyLimit *big.Rat `bigquery:"monthly_limit"` // REQUIRED NUMERIC
	Spent        *big.Rat `bigquery:"spent"`         // NULLABLE NUMERIC
	Remaining    *big.Rat `bigquery:"remaining"`     // NULLABLE NUMERIC
}
