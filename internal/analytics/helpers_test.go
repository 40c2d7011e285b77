package analytics

import (
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var txSeq int

// expense builds a debit of amount (given as a positive number) in category.
func expense(category string, on time.Time, amount string) domain.Transaction {
	txSeq++
	return domain.Transaction{
		ID:       fmt.Sprintf("tx-%d", txSeq),
		Date:     on,
		Amount:   dec(amount).Neg(),
		Category: category,
		Type:     "debit",
	}
}

// income builds a credit of amount in category.
func income(category string, on time.Time, amount string) domain.Transaction {
	txSeq++
	return domain.Transaction{
		ID:       fmt.Sprintf("tx-%d", txSeq),
		Date:     on,
		Amount:   dec(amount),
		Category: category,
		Type:     domain.TransactionTypeCredit,
	}
}

func categories(ids ...string) []domain.Category {
	out := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Category{ID: id, Name: displayName(id), Type: "expense"})
	}
	return out
}

func displayName(id string) string {
	if id == "" {
		return id
	}
	return string(id[0]-'a'+'A') + id[1:]
}
