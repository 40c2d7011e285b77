package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the fractional precision of the BigQuery NUMERIC type.
const numericScale = 9

func toLedger(txRows []*TransactionRow, categoryRows []*CategoryRow, budgetRows []*BudgetRow) (*domain.Ledger, error) {
	l := &domain.Ledger{
		Transactions: make([]domain.Transaction, 0, len(txRows)),
		Categories:   make([]domain.Category, 0, len(categoryRows)),
		Budgets:      make([]domain.Budget, 0, len(budgetRows)),
	}

	for _, row := range txRows {
		tx, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("toLedger: transaction %s: %w", row.TransactionID, err)
		}
		l.Transactions = append(l.Transactions, tx)
	}
	for _, row := range categoryRows {
		l.Categories = append(l.Categories, row.toDomain())
	}
	for _, row := range budgetRows {
		b, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("toLedger: budget %s: %w", row.BudgetID, err)
		}
		l.Budgets = append(l.Budgets, b)
	}
	return l, nil
}

func (r *TransactionRow) toDomain() (domain.Transaction, error) {
	if !r.TransactionDate.IsValid() {
		return domain.Transaction{}, fmt.Errorf("invalid transaction_date %s", r.TransactionDate)
	}
	if r.Amount == nil {
		return domain.Transaction{}, fmt.Errorf("missing amount")
	}
	amount, err := ratToDecimal(r.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		ID:          r.TransactionID,
		Date:        r.TransactionDate.In(time.UTC),
		Description: r.Description,
		Amount:      amount,
		Category:    r.CategoryID.StringVal,
		Account:     r.AccountID.StringVal,
		Type:        r.TransactionType,
		Tags:        r.Tags,
		Notes:       r.Notes.StringVal,
	}
	if r.MerchantName.Valid {
		tx.Merchant = &domain.Merchant{
			Name:     r.MerchantName.StringVal,
			Location: r.MerchantLocation.StringVal,
		}
	}
	return tx, nil
}

func (r *CategoryRow) toDomain() domain.Category {
	c := domain.Category{
		ID:    r.CategoryID,
		Name:  r.Name,
		Type:  r.CategoryType,
		Icon:  r.Icon.StringVal,
		Color: r.Color.StringVal,
	}
	if r.ParentCategoryID.Valid {
		parent := r.ParentCategoryID.StringVal
		c.Parent = &parent
	}
	return c
}

func (r *BudgetRow) toDomain() (domain.Budget, error) {
	if r.MonthlyLimit == nil {
		return domain.Budget{}, fmt.Errorf("missing monthly_limit")
	}
	limit, err := ratToDecimal(r.MonthlyLimit)
	if err != nil {
		return domain.Budget{}, err
	}
	spent, err := ratToDecimal(r.Spent)
	if err != nil {
		return domain.Budget{}, err
	}
	remaining, err := ratToDecimal(r.Remaining)
	if err != nil {
		return domain.Budget{}, err
	}

	return domain.Budget{
		ID:           r.BudgetID,
		Category:     r.CategoryID,
		MonthlyLimit: limit,
		Spent:        spent,
		Remaining:    remaining,
		Period:       r.Period,
	}, nil
}

// ratToDecimal converts a NUMERIC value; nil maps to zero.
func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(r.FloatString(numericScale))
	if err != nil {
		return decimal.Zero, fmt.Errorf("converting NUMERIC %s: %w", r.String(), err)
	}
	return d, nil
}
