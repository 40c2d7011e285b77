package analytics

import (
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Scope selects which transactions an aggregation covers: a single category
// or the whole ledger. Build one with ByCategory or AllCategories.
type Scope struct {
	categoryID string
	all        bool
}

// ByCategory scopes an aggregation to one category id.
func ByCategory(id string) Scope {
	return Scope{categoryID: id}
}

// AllCategories scopes an aggregation to every transaction in the ledger.
func AllCategories() Scope {
	return Scope{all: true}
}

// Matches reports whether tx is inside the scope.
func (s Scope) Matches(tx domain.Transaction) bool {
	return s.all || tx.Category == s.categoryID
}

func (s Scope) String() string {
	if s.all {
		return "all"
	}
	return "category:" + s.categoryID
}

// PeriodSpending sums the absolute value of expenses (amount < 0) in scope
// dated within p. The result is never negative.
func PeriodSpending(p Period, scope Scope, txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.IsExpense() && scope.Matches(tx) && p.Contains(tx.Date) {
			total = total.Add(tx.Amount.Abs())
		}
	}
	return total
}

// PeriodIncome sums credits with a positive amount dated within p.
func PeriodIncome(p Period, txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.IsIncome() && p.Contains(tx.Date) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
