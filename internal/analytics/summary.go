package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// expenseHistoryMonths is the window covered by MonthlyExpensesByCategory.
	expenseHistoryMonths = 12
	// DefaultSummaryMonths is used by CategorySummaries for a non-positive window.
	DefaultSummaryMonths = 3
)

// MonthlyCategoryExpenses lists expense totals per category for one month.
type MonthlyCategoryExpenses struct {
	Month      string          `json:"month"`
	MonthLabel string          `json:"monthLabel"`
	Categories []CategoryTotal `json:"categories"`
}

// CategorySummaries returns the net signed total per category over the last
// months months up to and including the reference date, largest absolute
// total first. Income and expenses in the same category offset each other.
func (e *Engine) CategorySummaries(ctx context.Context, months int) ([]CategoryTotal, error) {
	if months <= 0 {
		months = DefaultSummaryMonths
	}

	l, ref, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return categorySummaries(l, ref, months), nil
}

func categorySummaries(l *domain.Ledger, ref time.Time, months int) []CategoryTotal {
	start, end := window(ref, months)

	index := make(map[string]int)
	totals := []CategoryTotal{}
	for _, tx := range l.Transactions {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{
				CategoryID:   tx.Category,
				CategoryName: l.CategoryName(tx.Category),
				Total:        decimal.Zero,
			})
		}
		totals[i].Total = totals[i].Total.Add(tx.Amount)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.Abs().GreaterThan(totals[j].Total.Abs())
	})
	return totals
}

// MonthlyExpensesByCategory returns, for each month with expenses in the last
// twelve months up to the reference date, the expense total per category.
// Months are chronological; categories within a month are largest first.
func (e *Engine) MonthlyExpensesByCategory(ctx context.Context) ([]MonthlyCategoryExpenses, error) {
	l, ref, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return monthlyExpensesByCategory(l, ref), nil
}

func monthlyExpensesByCategory(l *domain.Ledger, ref time.Time) []MonthlyCategoryExpenses {
	start, end := window(ref, expenseHistoryMonths)
	inWindow := func(t time.Time) bool {
		return !t.Before(start) && !t.After(end)
	}

	byMonth := make(map[string][]domain.Transaction)
	for _, tx := range l.Transactions {
		if tx.IsExpense() && inWindow(tx.Date) {
			key := PeriodKey(tx.Date, PeriodMonth)
			byMonth[key] = append(byMonth[key], tx)
		}
	}

	result := make([]MonthlyCategoryExpenses, 0, len(byMonth))
	for key, txs := range byMonth {
		p := PeriodOf(txs[0].Date, PeriodMonth)
		categories := expensesByCategory(txs, p.Contains)
		for i := range categories {
			categories[i].CategoryName = l.CategoryName(categories[i].CategoryID)
		}
		sort.SliceStable(categories, func(i, j int) bool {
			return categories[i].Total.GreaterThan(categories[j].Total)
		})
		result = append(result, MonthlyCategoryExpenses{
			Month:      key,
			MonthLabel: p.Start.Format("Jan 2006"),
			Categories: categories,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Month < result[j].Month
	})
	return result
}

// window returns the day-granular range from months before ref to the end of
// the ref day. Month subtraction normalises overflow, so 31 October minus one
// month is 1 October.
func window(ref time.Time, months int) (time.Time, time.Time) {
	year, month, day := ref.Date()
	day0 := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	start := day0.AddDate(0, -months, 0)
	end := day0.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}
