package analytics

import (
	"context"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultSnapshotCount is the number of months returned by MonthlySnapshots
// when the caller does not ask for a positive count.
const DefaultSnapshotCount = 12

// MaxSnapshotCount caps the number of months MonthlySnapshots builds.
const MaxSnapshotCount = 120

// noCategoryName labels the largest category of a month without expenses.
const noCategoryName = "None"

// CategoryTotal is a category with an aggregated amount.
type CategoryTotal struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
}

// MonthlySnapshot is a whole-ledger rollup for one month.
type MonthlySnapshot struct {
	Month           string          `json:"month"`
	Income          decimal.Decimal `json:"income"`
	Spending        decimal.Decimal `json:"spending"`
	Remaining       decimal.Decimal `json:"remaining"`
	LargestCategory CategoryTotal   `json:"largestCategory"`
	SpendingTrend   TrendComparison `json:"spendingTrend"`
}

// MonthlySnapshot builds the snapshot for month (YYYY-MM). An empty month
// selects the month of the reference date.
func (e *Engine) MonthlySnapshot(ctx context.Context, month string) (MonthlySnapshot, error) {
	var (
		p   Period
		err error
	)
	if month != "" {
		if p, err = ParsePeriod(month, PeriodMonth); err != nil {
			return MonthlySnapshot{}, err
		}
	}

	l, ref, err := e.snapshot(ctx)
	if err != nil {
		return MonthlySnapshot{}, err
	}
	if month == "" {
		p = PeriodOf(ref, PeriodMonth)
	}
	return monthlySnapshot(l, p), nil
}

// MonthlySnapshots builds count consecutive monthly snapshots ending with the
// reference month, oldest first. All snapshots come from one ledger load.
// count is clamped to MaxSnapshotCount. A ledger without a reference date
// has no months to report and yields an empty list.
func (e *Engine) MonthlySnapshots(ctx context.Context, count int) ([]MonthlySnapshot, error) {
	if count <= 0 {
		count = DefaultSnapshotCount
	}
	if count > MaxSnapshotCount {
		count = MaxSnapshotCount
	}

	l, ref, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if ref.IsZero() {
		return []MonthlySnapshot{}, nil
	}
	return monthlySnapshots(l, ref, count), nil
}

func monthlySnapshots(l *domain.Ledger, ref time.Time, count int) []MonthlySnapshot {
	snapshots := make([]MonthlySnapshot, count)
	p := PeriodOf(ref, PeriodMonth)
	for i := count - 1; i >= 0; i-- {
		snapshots[i] = monthlySnapshot(l, p)
		p = p.Previous()
	}
	return snapshots
}

func monthlySnapshot(l *domain.Ledger, p Period) MonthlySnapshot {
	income := PeriodIncome(p, l.Transactions)
	spending := PeriodSpending(p, AllCategories(), l.Transactions)

	return MonthlySnapshot{
		Month:           p.Key(),
		Income:          income,
		Spending:        spending,
		Remaining:       income.Sub(spending),
		LargestCategory: largestCategory(l, p),
		SpendingTrend:   CompareTrend(p, AllCategories(), l.Transactions),
	}
}

// largestCategory returns the category with the highest expense total in p.
// Only a strictly greater total replaces the leader, so on a tie the category
// whose first expense comes earliest in ledger order wins.
func largestCategory(l *domain.Ledger, p Period) CategoryTotal {
	totals := expensesByCategory(l.Transactions, p.Contains)

	largest := CategoryTotal{CategoryName: noCategoryName, Total: decimal.Zero}
	found := false
	for _, ct := range totals {
		if !found || ct.Total.GreaterThan(largest.Total) {
			largest = ct
			found = true
		}
	}
	if found {
		largest.CategoryName = l.CategoryName(largest.CategoryID)
	}
	return largest
}

// expensesByCategory sums absolute expense amounts per category for
// transactions accepted by include, in order of first appearance.
func expensesByCategory(txs []domain.Transaction, include func(time.Time) bool) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, tx := range txs {
		if !tx.IsExpense() || !include(tx.Date) {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{CategoryID: tx.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(tx.Amount.Abs())
	}
	return totals
}
