package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetStatus classifies current spending against a budget target.
type BudgetStatus string

const (
	StatusOver     BudgetStatus = "over"
	StatusUnder    BudgetStatus = "under"
	StatusOnTarget BudgetStatus = "on_target"
)

// budgetTolerance is the fraction of the target treated as on target.
var budgetTolerance = decimal.New(5, -2)

// CategoryTrend is the spending trend of one category for the current period.
// Target and Status are set only when a budget exists for that period.
type CategoryTrend struct {
	CategoryID    string           `json:"categoryId"`
	CategoryName  string           `json:"categoryName"`
	Period        string           `json:"period"`
	SpendingTrend TrendComparison  `json:"spendingTrend"`
	Target        *decimal.Decimal `json:"target,omitempty"`
	Status        BudgetStatus     `json:"status,omitempty"`
}

// TrendQuery selects the categories and period type of CategoryTrends.
// An empty CategoryID covers every category in the registry.
type TrendQuery struct {
	CategoryID string
	PeriodType PeriodType
}

// CategoryTrends returns per-category trends for the current period, largest
// current spending first.
func (e *Engine) CategoryTrends(ctx context.Context, q TrendQuery) ([]CategoryTrend, error) {
	if q.PeriodType == "" {
		q.PeriodType = PeriodMonth
	}
	if !q.PeriodType.Valid() {
		return nil, invalidPeriodType(q.PeriodType)
	}

	l, ref, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return categoryTrends(l, ref, q), nil
}

func categoryTrends(l *domain.Ledger, ref time.Time, q TrendQuery) []CategoryTrend {
	current := PeriodOf(ref, q.PeriodType)
	key := current.Key()

	categoryIDs := l.CategoryIDs()
	if q.CategoryID != "" {
		categoryIDs = []string{q.CategoryID}
	}

	targets := make(map[string]decimal.Decimal)
	for _, b := range l.Budgets {
		if b.Period == key {
			targets[b.Category] = b.MonthlyLimit
		}
	}

	trends := make([]CategoryTrend, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		trend := CategoryTrend{
			CategoryID:    id,
			CategoryName:  l.CategoryName(id),
			Period:        key,
			SpendingTrend: CompareTrend(current, ByCategory(id), l.Transactions),
		}
		if target, ok := targets[id]; ok {
			trend.Target = &target
			trend.Status = BudgetStatusFor(trend.SpendingTrend.Current, target)
		}
		trends = append(trends, trend)
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].SpendingTrend.Current.GreaterThan(trends[j].SpendingTrend.Current)
	})
	return trends
}

// BudgetStatusFor classifies current against target with a 5% tolerance band.
func BudgetStatusFor(current, target decimal.Decimal) BudgetStatus {
	tolerance := target.Mul(budgetTolerance)
	switch {
	case current.GreaterThan(target.Add(tolerance)):
		return StatusOver
	case current.LessThan(target.Sub(tolerance)):
		return StatusUnder
	default:
		return StatusOnTarget
	}
}
