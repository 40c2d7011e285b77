package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-insights/internal/analytics"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TrendService is the part of the analytics engine used by TrendsHandler.
type TrendService interface {
	CategoryTrends(ctx context.Context, q analytics.TrendQuery) ([]analytics.CategoryTrend, error)
	FindOutliers(ctx context.Context, q analytics.OutlierQuery) ([]analytics.SpendingOutlier, error)
}

// SnapshotService is the part of the analytics engine used by SnapshotsHandler.
type SnapshotService interface {
	MonthlySnapshot(ctx context.Context, month string) (analytics.MonthlySnapshot, error)
	MonthlySnapshots(ctx context.Context, count int) ([]analytics.MonthlySnapshot, error)
}

// SummaryService is the part of the analytics engine used by SummaryHandler.
type SummaryService interface {
	CategorySummaries(ctx context.Context, months int) ([]analytics.CategoryTotal, error)
	MonthlyExpensesByCategory(ctx context.Context) ([]analytics.MonthlyCategoryExpenses, error)
}

// TrendsHandler handles trend and outlier endpoints.
type TrendsHandler struct {
	svc TrendService
	log zerolog.Logger
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(svc TrendService, log zerolog.Logger) *TrendsHandler {
	return &TrendsHandler{
		svc: svc,
		log: log,
	}
}

// CategoryTrends handles GET /api/trends
func (h *TrendsHandler) CategoryTrends(c *gin.Context) {
	periodType, err := analytics.ParsePeriodType(c.Query("period_type"))
	if err != nil {
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	}

	q := analytics.TrendQuery{
		CategoryID: c.Query("category_id"),
		PeriodType: periodType,
	}

	trends, err := h.svc.CategoryTrends(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "Failed to compute category trends")
		return
	}

	middleware.WriteJSON(c, http.StatusOK, trends)
}

// FindOutliers handles GET /api/outliers
func (h *TrendsHandler) FindOutliers(c *gin.Context) {
	q := analytics.DefaultOutlierQuery()

	periodType, err := analytics.ParsePeriodType(c.Query("period_type"))
	if err != nil {
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	}
	q.PeriodType = periodType

	direction, err := analytics.ParseDirectionFilter(c.Query("direction"))
	if err != nil {
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	}
	q.Direction = direction

	if thresholdStr := c.Query("threshold"); thresholdStr != "" {
		threshold, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil || threshold < 0 {
			middleware.WriteError(c, http.StatusBadRequest, "Invalid threshold")
			return
		}
		q.ThresholdPercent = threshold
	}

	outliers, err := h.svc.FindOutliers(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "Failed to find spending outliers")
		return
	}

	middleware.WriteJSON(c, http.StatusOK, outliers)
}

func (h *TrendsHandler) fail(c *gin.Context, err error, message string) {
	writeServiceError(c, h.log, err, message)
}

// SnapshotsHandler handles monthly snapshot endpoints.
type SnapshotsHandler struct {
	svc SnapshotService
	log zerolog.Logger
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(svc SnapshotService, log zerolog.Logger) *SnapshotsHandler {
	return &SnapshotsHandler{
		svc: svc,
		log: log,
	}
}

// MonthlySnapshot handles GET /api/snapshots/monthly
func (h *SnapshotsHandler) MonthlySnapshot(c *gin.Context) {
	snapshot, err := h.svc.MonthlySnapshot(c.Request.Context(), c.Query("month"))
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to build monthly snapshot")
		return
	}

	middleware.WriteJSON(c, http.StatusOK, snapshot)
}

// MonthlySnapshots handles GET /api/snapshots
func (h *SnapshotsHandler) MonthlySnapshots(c *gin.Context) {
	count, ok := intQuery(c, "count", analytics.DefaultSnapshotCount, analytics.MaxSnapshotCount)
	if !ok {
		return
	}

	snapshots, err := h.svc.MonthlySnapshots(c.Request.Context(), count)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to build monthly snapshots")
		return
	}

	middleware.WriteJSON(c, http.StatusOK, snapshots)
}

// SummaryHandler handles category summary endpoints.
type SummaryHandler struct {
	svc SummaryService
	log zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(svc SummaryService, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{
		svc: svc,
		log: log,
	}
}

// CategorySummaries handles GET /api/categories/summary
func (h *SummaryHandler) CategorySummaries(c *gin.Context) {
	months, ok := intQuery(c, "months", analytics.DefaultSummaryMonths, 0)
	if !ok {
		return
	}

	summaries, err := h.svc.CategorySummaries(c.Request.Context(), months)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to summarise categories")
		return
	}

	middleware.WriteJSON(c, http.StatusOK, summaries)
}

// MonthlyExpenses handles GET /api/expenses/monthly
func (h *SummaryHandler) MonthlyExpenses(c *gin.Context) {
	expenses, err := h.svc.MonthlyExpensesByCategory(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to list monthly expenses")
		return
	}

	middleware.WriteJSON(c, http.StatusOK, expenses)
}

// intQuery reads a positive integer query parameter, writing a 400 response
// and returning false when it is malformed or above limit. A limit of 0 means no
// upper bound.
func intQuery(c *gin.Context, name string, def, limit int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		middleware.WriteError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	if limit > 0 && n > limit {
		middleware.WriteError(c, http.StatusBadRequest, fmt.Sprintf("%s must be at most %d", name, limit))
		return 0, false
	}
	return n, true
}

// writeServiceError maps parameter errors to 400 and everything else, such as
// a ledger that failed to load, to 500. Failures are logged with the request
// scoped logger when the context carries one.
func writeServiceError(c *gin.Context, log zerolog.Logger, err error, message string) {
	if isBadRequest(err) {
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	}

	reqLog := logger.FromContextOr(c.Request.Context(), log)
	reqLog.Error().
		Err(err).
		Msg(message)
	middleware.WriteError(c, http.StatusInternalServerError, message)
}

func isBadRequest(err error) bool {
	return errors.Is(err, analytics.ErrInvalidPeriodKey) ||
		errors.Is(err, analytics.ErrInvalidPeriodType) ||
		errors.Is(err, analytics.ErrInvalidDirection)
}
