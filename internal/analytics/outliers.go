package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// trailingWindow is the number of preceding periods averaged for outlier
// detection, whatever the period type.
const trailingWindow = 4

// DefaultThresholdPercent is the minimum absolute deviation reported as an outlier.
const DefaultThresholdPercent = 20

// SpendingOutlier is a category whose current spending deviates from its
// trailing average by at least the query threshold.
type SpendingOutlier struct {
	CategoryID            string          `json:"categoryId"`
	CategoryName          string          `json:"categoryName"`
	Period                string          `json:"period"`
	CurrentPeriodSpending decimal.Decimal `json:"currentPeriodSpending"`
	TrailingAverage       decimal.Decimal `json:"trailingAverage"`
	Change                Change          `json:"change"`
	SpendingTrend         TrendComparison `json:"spendingTrend"`
}

// OutlierQuery parameterises FindOutliers. Use DefaultOutlierQuery as a base;
// ThresholdPercent is taken as is, so zero reports every category with a signal.
type OutlierQuery struct {
	PeriodType       PeriodType
	Direction        DirectionFilter
	ThresholdPercent float64
}

// DefaultOutlierQuery returns monthly periods, both directions and a 20% threshold.
func DefaultOutlierQuery() OutlierQuery {
	return OutlierQuery{
		PeriodType:       PeriodMonth,
		Direction:        FilterBoth,
		ThresholdPercent: DefaultThresholdPercent,
	}
}

// FindOutliers returns categories whose current-period spending deviates from
// the average of the preceding four periods, largest deviation first.
func (e *Engine) FindOutliers(ctx context.Context, q OutlierQuery) ([]SpendingOutlier, error) {
	if q.PeriodType == "" {
		q.PeriodType = PeriodMonth
	}
	if q.Direction == "" {
		q.Direction = FilterBoth
	}
	if !q.PeriodType.Valid() {
		return nil, invalidPeriodType(q.PeriodType)
	}
	if _, err := ParseDirectionFilter(string(q.Direction)); err != nil {
		return nil, err
	}

	l, ref, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return findOutliers(l, ref, q), nil
}

func findOutliers(l *domain.Ledger, ref time.Time, q OutlierQuery) []SpendingOutlier {
	current := PeriodOf(ref, q.PeriodType)

	outliers := []SpendingOutlier{}
	for _, id := range l.CategoryIDs() {
		scope := ByCategory(id)
		spending := PeriodSpending(current, scope, l.Transactions)
		average := TrailingAverage(current, scope, l.Transactions)
		if spending.IsZero() && average.IsZero() {
			continue
		}

		change := deviation(spending, average)
		if !q.Direction.Allows(change.Direction) {
			continue
		}
		if float64(abs(change.Percent)) < q.ThresholdPercent {
			continue
		}

		outliers = append(outliers, SpendingOutlier{
			CategoryID:            id,
			CategoryName:          l.CategoryName(id),
			Period:                current.Key(),
			CurrentPeriodSpending: spending,
			TrailingAverage:       average,
			Change:                change,
			SpendingTrend:         CompareTrend(current, scope, l.Transactions),
		})
	}

	sort.SliceStable(outliers, func(i, j int) bool {
		return abs(outliers[i].Change.Percent) > abs(outliers[j].Change.Percent)
	})
	return outliers
}

// TrailingAverage is the mean spending over the four periods immediately
// before p.
func TrailingAverage(p Period, scope Scope, txs []domain.Transaction) decimal.Decimal {
	return trailingAverage(p, func(prev Period) decimal.Decimal {
		return PeriodSpending(prev, scope, txs)
	})
}

func trailingAverage(p Period, spending func(Period) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	prev := p
	for i := 0; i < trailingWindow; i++ {
		prev = prev.Previous()
		total = total.Add(spending(prev))
	}
	return total.Div(decimal.NewFromInt(trailingWindow))
}

// deviation compares spending to its trailing average. A zero average follows
// the zero-baseline convention of PercentChange, but the direction comes from
// the sign of the amount rather than the rounded percentage.
func deviation(current, average decimal.Decimal) Change {
	amount := current.Sub(average)

	var percent int64
	switch {
	case !average.IsZero():
		percent = roundPercent(amount, average)
	case current.IsPositive():
		percent = 100
	}

	direction := DirectionDecrease
	if !amount.IsNegative() {
		direction = DirectionIncrease
	}
	return Change{Amount: amount, Percent: percent, Direction: direction}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
