// Package api wires the analytics handlers into a gin router.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/handlers"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Service is everything the HTTP API needs from the analytics engine.
type Service interface {
	handlers.TrendService
	handlers.SnapshotService
	handlers.SummaryService
}

// NewRouter builds the HTTP API around svc.
func NewRouter(svc Service, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestID(log),
		middleware.Logger(log),
		middleware.CORS(),
	)

	r.GET("/health", func(c *gin.Context) {
		middleware.WriteJSON(c, http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	trends := handlers.NewTrendsHandler(svc, log)
	snapshots := handlers.NewSnapshotsHandler(svc, log)
	summary := handlers.NewSummaryHandler(svc, log)

	api := r.Group("/api")
	api.GET("/trends", trends.CategoryTrends)
	api.GET("/outliers", trends.FindOutliers)
	api.GET("/snapshots", snapshots.MonthlySnapshots)
	api.GET("/snapshots/monthly", snapshots.MonthlySnapshot)
	api.GET("/categories/summary", summary.CategorySummaries)
	api.GET("/expenses/monthly", summary.MonthlyExpenses)

	r.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, http.StatusNotFound, "Not found")
	})

	return r
}
