package analytics

import (
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// TrendChanges holds the current period compared to each baseline.
type TrendChanges struct {
	VsLastPeriod  Change `json:"vsLastPeriod"`
	VsLastQuarter Change `json:"vsLastQuarter"`
	VsLastYear    Change `json:"vsLastYear"`
}

// TrendComparison is the spending of one period next to three historical
// baselines: the previous period, three periods back and one year back.
type TrendComparison struct {
	Current               decimal.Decimal `json:"current"`
	LastPeriod            decimal.Decimal `json:"lastPeriod"`
	SamePeriodLastQuarter decimal.Decimal `json:"samePeriodLastQuarter"`
	SamePeriodLastYear    decimal.Decimal `json:"samePeriodLastYear"`
	Changes               TrendChanges    `json:"changes"`
}

// CompareTrend computes the four period sums for scope and the three changes
// against current, all from the same transaction slice.
func CompareTrend(p Period, scope Scope, txs []domain.Transaction) TrendComparison {
	current := PeriodSpending(p, scope, txs)
	lastPeriod := PeriodSpending(p.Previous(), scope, txs)
	lastQuarter := PeriodSpending(p.SamePeriodLastQuarter(), scope, txs)
	lastYear := PeriodSpending(p.SamePeriodLastYear(), scope, txs)

	return TrendComparison{
		Current:               current,
		LastPeriod:            lastPeriod,
		SamePeriodLastQuarter: lastQuarter,
		SamePeriodLastYear:    lastYear,
		Changes: TrendChanges{
			VsLastPeriod:  NewChange(current, lastPeriod),
			VsLastQuarter: NewChange(current, lastQuarter),
			VsLastYear:    NewChange(current, lastYear),
		},
	}
}

// CompareTrendByKey is CompareTrend for a period given by key.
func CompareTrendByKey(key string, t PeriodType, scope Scope, txs []domain.Transaction) (TrendComparison, error) {
	p, err := ParsePeriod(key, t)
	if err != nil {
		return TrendComparison{}, err
	}
	return CompareTrend(p, scope, txs), nil
}
