package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/analytics"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testLedger() *domain.Ledger {
	return &domain.Ledger{
		Categories: []domain.Category{
			{ID: "rent", Name: "Rent", Type: "expense"},
			{ID: "groceries", Name: "Groceries", Type: "expense"},
			{ID: "salary", Name: "Salary", Type: "income"},
		},
		Transactions: []domain.Transaction{
			{ID: "1", Date: day(2025, time.October, 1), Amount: decimal.NewFromInt(3000), Category: "salary", Type: domain.TransactionTypeCredit},
			{ID: "2", Date: day(2025, time.October, 2), Amount: decimal.NewFromInt(-800), Category: "rent", Type: "debit"},
			{ID: "3", Date: day(2025, time.October, 9), Amount: decimal.NewFromInt(-1200), Category: "groceries", Type: "debit"},
			{ID: "4", Date: day(2025, time.September, 9), Amount: decimal.NewFromInt(-1000), Category: "groceries", Type: "debit"},
		},
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	engine := analytics.NewEngine(ledger.Static(testLedger()), analytics.WithReferenceDate(day(2025, time.October, 31)))
	return NewRouter(engine, zerolog.Nop())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newTestServer(t), "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMonthlySnapshotEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/api/snapshots/monthly?month=2025-10")
	require.Equal(t, http.StatusOK, w.Code)

	var snap analytics.MonthlySnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

	assert.Equal(t, "2025-10", snap.Month)
	assert.True(t, snap.Income.Equal(decimal.NewFromInt(3000)))
	assert.True(t, snap.Spending.Equal(decimal.NewFromInt(2000)))
	assert.True(t, snap.Remaining.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Groceries", snap.LargestCategory.CategoryName)
	assert.Equal(t, int64(100), snap.SpendingTrend.Changes.VsLastPeriod.Percent)
}

func TestSnapshotsEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/api/snapshots?count=3")
	require.Equal(t, http.StatusOK, w.Code)

	var snaps []analytics.MonthlySnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snaps))
	require.Len(t, snaps, 3)
	assert.Equal(t, []string{"2025-08", "2025-09", "2025-10"}, []string{snaps[0].Month, snaps[1].Month, snaps[2].Month})
}

func TestTrendsEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/api/trends?category_id=groceries")
	require.Equal(t, http.StatusOK, w.Code)

	var trends []analytics.CategoryTrend
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trends))
	require.Len(t, trends, 1)
	assert.Equal(t, "2025-10", trends[0].Period)
	assert.Equal(t, int64(20), trends[0].SpendingTrend.Changes.VsLastPeriod.Percent)
	assert.Equal(t, analytics.DirectionIncrease, trends[0].SpendingTrend.Changes.VsLastPeriod.Direction)
}

func TestOutliersEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/api/outliers?direction=decrease")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = get(t, newTestServer(t), "/api/outliers?direction=up")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidPeriodKeyIs400(t *testing.T) {
	w := get(t, newTestServer(t), "/api/snapshots/monthly?month=October")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadFailureIs500(t *testing.T) {
	failing := ledger.LoaderFunc(func(ctx context.Context) (*domain.Ledger, error) {
		return nil, ledger.ErrInvalidTransaction
	})
	h := NewRouter(analytics.NewEngine(failing), zerolog.Nop())

	w := get(t, h, "/api/snapshots")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNoRoute(t *testing.T) {
	w := get(t, newTestServer(t), "/api/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
