package analytics

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPeriodSpending(t *testing.T) {
	oct := PeriodOf(date(2025, time.October, 1), PeriodMonth)
	txs := []domain.Transaction{
		expense("groceries", date(2025, time.October, 1), "100.25"),
		expense("groceries", date(2025, time.October, 31), "50"),
		expense("rent", date(2025, time.October, 3), "800"),
		expense("groceries", date(2025, time.September, 30), "999"),
		expense("groceries", date(2025, time.November, 1), "999"),
		income("groceries", date(2025, time.October, 10), "20"), // refund, not spending
	}

	assert.True(t, PeriodSpending(oct, ByCategory("groceries"), txs).Equal(dec("150.25")))
	assert.True(t, PeriodSpending(oct, ByCategory("rent"), txs).Equal(dec("800")))
	assert.True(t, PeriodSpending(oct, AllCategories(), txs).Equal(dec("950.25")))
	assert.True(t, PeriodSpending(oct, ByCategory("travel"), txs).IsZero())
}

func TestPeriodSpending_NeverNegative(t *testing.T) {
	q := PeriodOf(date(2025, time.August, 1), PeriodQuarter)
	txs := []domain.Transaction{
		income("salary", date(2025, time.July, 1), "3000"),
		expense("rent", date(2025, time.August, 1), "0.01"),
	}

	got := PeriodSpending(q, AllCategories(), txs)
	assert.False(t, got.IsNegative())
	assert.True(t, got.Equal(dec("0.01")))
}

func TestPeriodSpending_Additive(t *testing.T) {
	// The spending of a quarter equals the sum of its three months.
	txs := []domain.Transaction{
		expense("a", date(2025, time.April, 3), "10"),
		expense("a", date(2025, time.May, 30), "20"),
		expense("b", date(2025, time.June, 30), "30.5"),
		expense("a", date(2025, time.July, 1), "1000"),
	}

	quarter := PeriodSpending(PeriodOf(date(2025, time.April, 1), PeriodQuarter), AllCategories(), txs)
	months := PeriodSpending(PeriodOf(date(2025, time.April, 1), PeriodMonth), AllCategories(), txs).
		Add(PeriodSpending(PeriodOf(date(2025, time.May, 1), PeriodMonth), AllCategories(), txs)).
		Add(PeriodSpending(PeriodOf(date(2025, time.June, 1), PeriodMonth), AllCategories(), txs))

	assert.True(t, quarter.Equal(months))
	assert.True(t, quarter.Equal(dec("60.5")))
}

func TestPeriodIncome(t *testing.T) {
	oct := PeriodOf(date(2025, time.October, 1), PeriodMonth)
	txs := []domain.Transaction{
		income("salary", date(2025, time.October, 1), "3000"),
		income("freelance", date(2025, time.October, 20), "450.50"),
		expense("rent", date(2025, time.October, 3), "800"),
		// positive but not a credit
		{ID: "x", Date: date(2025, time.October, 4), Amount: dec("75"), Type: "transfer"},
		income("salary", date(2025, time.September, 30), "3000"),
	}

	assert.True(t, PeriodIncome(oct, txs).Equal(dec("3450.50")))
}

func TestScope(t *testing.T) {
	tx := expense("groceries", date(2025, time.October, 1), "1")

	assert.True(t, AllCategories().Matches(tx))
	assert.True(t, ByCategory("groceries").Matches(tx))
	assert.False(t, ByCategory("rent").Matches(tx))
	assert.Equal(t, "all", AllCategories().String())
	assert.Equal(t, "category:rent", ByCategory("rent").String())
}
