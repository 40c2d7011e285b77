package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRowToDomain(t *testing.T) {
	row := &TransactionRow{
		TransactionID:   "tx-1",
		TransactionDate: civil.Date{Year: 2025, Month: time.October, Day: 3},
		Description:     "Weekly shop",
		Amount:          big.NewRat(-12345, 100),
		CategoryID:      bigquery.NullString{StringVal: "groceries", Valid: true},
		TransactionType: "debit",
		MerchantName:    bigquery.NullString{StringVal: "Tesco", Valid: true},
		Tags:            []string{"food"},
	}

	tx, err := row.toDomain()
	require.NoError(t, err)

	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, time.Date(2025, time.October, 3, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-123.45")), "amount = %s", tx.Amount)
	assert.Equal(t, "groceries", tx.Category)
	assert.Empty(t, tx.Account)
	require.NotNil(t, tx.Merchant)
	assert.Equal(t, "Tesco", tx.Merchant.Name)
	assert.True(t, tx.IsExpense())
}

func TestTransactionRowToDomain_Invalid(t *testing.T) {
	tests := []struct {
		name string
		row  TransactionRow
	}{
		{
			name: "missing amount",
			row:  TransactionRow{TransactionID: "a", TransactionDate: civil.Date{Year: 2025, Month: 1, Day: 1}},
		},
		{
			name: "invalid date",
			row:  TransactionRow{TransactionID: "b", Amount: big.NewRat(1, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.row.toDomain()
			assert.Error(t, err)
		})
	}
}

func TestToLedger(t *testing.T) {
	txRows := []*TransactionRow{
		{
			TransactionID:   "tx-1",
			TransactionDate: civil.Date{Year: 2025, Month: time.September, Day: 30},
			Amount:          big.NewRat(3000, 1),
			TransactionType: "credit",
		},
	}
	categoryRows := []*CategoryRow{
		{CategoryID: "rent", Name: "Rent", CategoryType: "expense"},
		{
			CategoryID:       "groceries",
			Name:             "Groceries",
			CategoryType:     "expense",
			ParentCategoryID: bigquery.NullString{StringVal: "living", Valid: true},
		},
	}
	budgetRows := []*BudgetRow{
		{BudgetID: "b-1", CategoryID: "rent", Period: "2025-09", MonthlyLimit: big.NewRat(800, 1)},
	}

	l, err := toLedger(txRows, categoryRows, budgetRows)
	require.NoError(t, err)

	require.Len(t, l.Transactions, 1)
	assert.True(t, l.Transactions[0].IsIncome())
	require.Len(t, l.Categories, 2)
	assert.Nil(t, l.Categories[0].Parent)
	require.NotNil(t, l.Categories[1].Parent)
	assert.Equal(t, "living", *l.Categories[1].Parent)
	require.Len(t, l.Budgets, 1)
	assert.True(t, l.Budgets[0].MonthlyLimit.Equal(decimal.NewFromInt(800)))
	assert.True(t, l.Budgets[0].Spent.IsZero())
}

func TestToLedger_BadBudget(t *testing.T) {
	_, err := toLedger(nil, nil, []*BudgetRow{{BudgetID: "b-1"}})
	assert.ErrorContains(t, err, "budget b-1")
}
