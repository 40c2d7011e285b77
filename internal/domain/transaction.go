package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionTypeCredit marks money coming into an account.
const TransactionTypeCredit = "credit"

// Transaction represents one ledger entry. Values are never mutated after the
// ledger is loaded, so they can be shared between concurrent computations.
type Transaction struct {
	ID          string
	Date        time.Time // calendar date at 00:00 UTC
	Description string
	Amount      decimal.Decimal // negative = expense, positive = credit/income
	Category    string          // Category.ID
	Account     string
	Type        string // e.g. "credit", "debit"

	Tags     []string
	Merchant *Merchant
	Notes    string
}

// Merchant is the optional counterparty of a transaction.
type Merchant struct {
	Name     string
	Location string
}

// IsExpense reports whether the transaction moves money out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction counts as income: a credit with a
// positive amount.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionTypeCredit && t.Amount.IsPositive()
}
