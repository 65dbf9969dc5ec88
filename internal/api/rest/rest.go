package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reachpaglu/scamwatch/internal/api/middleware"
	"github.com/reachpaglu/scamwatch/internal/config"
	"github.com/reachpaglu/scamwatch/internal/ratelimit"
)

// SetupRoutes configures all REST API routes with their per-route
// rate-limit windows.
func SetupRoutes(router *gin.Engine, handler Handler, limiter ratelimit.Limiter, limits config.RateLimitConfig) {
	// Health check endpoint (baseline window; load balancers poll it)
	router.GET("/health",
		middleware.RateLimit(limiter, "default", limits.Default, nil),
		handler.HealthCheck,
	)

	// Account verdict (lenient: extensions poll this on page load)
	router.GET("/check/:platform/:accountId",
		middleware.RateLimit(limiter, "check", limits.Check, nil),
		handler.CheckAccount,
	)

	// Report submission (restrictive to slow abuse)
	router.POST("/report",
		middleware.RateLimit(limiter, "report", limits.Submit, nil),
		handler.SubmitReport,
	)

	// Evidence listing (restrictive to slow scraping)
	router.GET("/evidence/:platform/:accountId",
		middleware.RateLimit(limiter, "evidence", limits.Evidence, nil),
		handler.GetEvidence,
	)

	// Vote count summary (shares the evidence window)
	router.GET("/reports/:platform/:accountId",
		middleware.RateLimit(limiter, "evidence", limits.Evidence, nil),
		handler.GetAccountReports,
	)

	// Global aggregates
	router.GET("/stats",
		middleware.RateLimit(limiter, "stats", limits.Stats, nil),
		handler.GetStats,
	)

	// One-shot import (admin-gated upstream; tight window regardless)
	router.GET("/migrate-data",
		middleware.RateLimit(limiter, "migrate", limits.Migrate, nil),
		handler.MigrateData,
	)

	// Unmatched routes get a JSON 404 instead of gin's default
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
