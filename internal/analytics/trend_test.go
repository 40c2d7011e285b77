package analytics

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareTrend(t *testing.T) {
	txs := []domain.Transaction{
		expense("groceries", date(2025, time.October, 5), "300"),
		expense("groceries", date(2025, time.September, 5), "200"),
		expense("groceries", date(2025, time.July, 5), "400"),
		expense("groceries", date(2024, time.October, 5), "150"),
		expense("rent", date(2025, time.October, 1), "800"),
	}

	got, err := CompareTrendByKey("2025-10", PeriodMonth, ByCategory("groceries"), txs)
	require.NoError(t, err)

	assert.True(t, got.Current.Equal(dec("300")))
	assert.True(t, got.LastPeriod.Equal(dec("200")))
	assert.True(t, got.SamePeriodLastQuarter.Equal(dec("400")))
	assert.True(t, got.SamePeriodLastYear.Equal(dec("150")))

	assert.Equal(t, int64(50), got.Changes.VsLastPeriod.Percent)
	assert.Equal(t, DirectionIncrease, got.Changes.VsLastPeriod.Direction)
	assert.Equal(t, int64(-25), got.Changes.VsLastQuarter.Percent)
	assert.Equal(t, DirectionDecrease, got.Changes.VsLastQuarter.Direction)
	assert.Equal(t, int64(100), got.Changes.VsLastYear.Percent)
	assert.True(t, got.Changes.VsLastQuarter.Amount.Equal(dec("-100")))
}

func TestCompareTrend_Quarter(t *testing.T) {
	txs := []domain.Transaction{
		expense("travel", date(2025, time.November, 10), "900"),
		expense("travel", date(2025, time.August, 10), "600"),
		expense("travel", date(2025, time.January, 10), "300"),
		expense("travel", date(2024, time.December, 31), "450"),
	}

	got, err := CompareTrendByKey("2025-Q4", PeriodQuarter, AllCategories(), txs)
	require.NoError(t, err)

	assert.True(t, got.Current.Equal(dec("900")))
	assert.True(t, got.LastPeriod.Equal(dec("600")))            // 2025-Q3
	assert.True(t, got.SamePeriodLastQuarter.Equal(dec("300"))) // 2025-Q1
	assert.True(t, got.SamePeriodLastYear.Equal(dec("450")))    // 2024-Q4
}

func TestCompareTrend_Empty(t *testing.T) {
	got := CompareTrend(PeriodOf(date(2025, time.October, 1), PeriodMonth), AllCategories(), nil)

	assert.True(t, got.Current.IsZero())
	for _, c := range []Change{got.Changes.VsLastPeriod, got.Changes.VsLastQuarter, got.Changes.VsLastYear} {
		assert.Equal(t, int64(0), c.Percent)
		assert.Equal(t, DirectionDecrease, c.Direction)
	}
}

func TestCompareTrendByKey_InvalidKey(t *testing.T) {
	_, err := CompareTrendByKey("2025-13", PeriodMonth, AllCategories(), nil)
	assert.ErrorIs(t, err, ErrInvalidPeriodKey)
}
