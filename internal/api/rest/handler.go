package rest

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/domain"
	"github.com/reachpaglu/scamwatch/internal/migrate"
	"github.com/reachpaglu/scamwatch/internal/service"
	"github.com/reachpaglu/scamwatch/internal/store"
)

// Handler defines the REST API handlers.
type Handler interface {
	// CheckAccount returns the account's derived verdict
	// GET /check/:platform/:accountId
	CheckAccount(c *gin.Context)

	// SubmitReport accepts one report with evidence
	// POST /report
	SubmitReport(c *gin.Context)

	// GetEvidence lists an account's evidence, newest first
	// GET /evidence/:platform/:accountId
	GetEvidence(c *gin.Context)

	// GetAccountReports returns the vote count summary for an account
	// GET /reports/:platform/:accountId
	GetAccountReports(c *gin.Context)

	// GetStats returns the global aggregate counters
	// GET /stats
	GetStats(c *gin.Context)

	// MigrateData runs the one-shot flat-file import
	// GET /migrate-data
	MigrateData(c *gin.Context)

	// HealthCheck reports liveness of the ledger and the cache
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	reports  *service.ReportService
	stats    *service.StatsService
	importer *migrate.Importer
	ledger   store.Store
	cache    cache.Cache
}

// NewHandler creates a new REST API handler
func NewHandler(reports *service.ReportService, stats *service.StatsService, importer *migrate.Importer, ledger store.Store, sideCache cache.Cache) Handler {
	return &handler{
		reports:  reports,
		stats:    stats,
		importer: importer,
		ledger:   ledger,
		cache:    sideCache,
	}
}

// accountParams extracts and sanitizes the platform/accountId path pair
func accountParams(c *gin.Context) (platform, accountID string, ok bool) {
	platform = domain.Sanitize(c.Param("platform"))
	accountID = domain.Sanitize(c.Param("accountId"))
	if platform == "" || accountID == "" {
		respondBadRequest(c, "Invalid platform or accountId")
		return "", "", false
	}
	return platform, accountID, true
}

func (h *handler) CheckAccount(c *gin.Context) {
	platform, accountID, ok := accountParams(c)
	if !ok {
		return
	}

	result, err := h.reports.CheckStatus(c.Request.Context(), platform, accountID)
	if err != nil {
		respondInternalError(c, err, "Failed to check account status")
		return
	}
	c.JSON(http.StatusOK, result)
}

// submitReportRequest is the POST /report body
type submitReportRequest struct {
	Platform      string `json:"platform"`
	AccountID     string `json:"accountId"`
	Evidence      string `json:"evidence"`
	EvidenceURL   string `json:"evidenceUrl"`
	ReporterToken string `json:"reporterToken"`
}

func (h *handler) SubmitReport(c *gin.Context) {
	// Anonymous-agent submissions are rejected as malformed input: the
	// user agent is one third of the reporter fingerprint
	userAgent := c.Request.UserAgent()
	if userAgent == "" {
		respondBadRequest(c, "User agent is required")
		return
	}

	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Missing required fields")
		return
	}

	platform := domain.Sanitize(req.Platform)
	accountID := domain.Sanitize(req.AccountID)
	evidence := domain.Sanitize(req.Evidence)
	if platform == "" || accountID == "" || evidence == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	var evidenceURL *string
	if req.EvidenceURL != "" {
		sanitized := domain.Sanitize(req.EvidenceURL)
		if !isValidURL(sanitized) {
			respondBadRequest(c, "Invalid evidence URL format")
			return
		}
		evidenceURL = &sanitized
	}

	reporterID := domain.NewReporterID(
		c.ClientIP(),
		domain.Sanitize(req.ReporterToken),
		domain.Sanitize(userAgent),
	)

	result, err := h.reports.SubmitReport(c.Request.Context(), service.SubmitInput{
		Platform:    platform,
		AccountID:   accountID,
		Evidence:    evidence,
		EvidenceURL: evidenceURL,
		ReporterID:  reporterID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReport) {
			respondDuplicate(c)
			return
		}
		respondInternalError(c, err, "Failed to submit report",
			zap.String("platform", platform),
			zap.String("account_id", accountID),
		)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) GetEvidence(c *gin.Context) {
	platform, accountID, ok := accountParams(c)
	if !ok {
		return
	}

	items, err := h.reports.ListEvidence(c.Request.Context(), platform, accountID)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch evidence")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) GetAccountReports(c *gin.Context) {
	platform, accountID, ok := accountParams(c)
	if !ok {
		return
	}

	result, err := h.reports.AccountReports(c.Request.Context(), platform, accountID)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch report data")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) GetStats(c *gin.Context) {
	result, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to fetch statistics")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) MigrateData(c *gin.Context) {
	result, err := h.importer.Run(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to migrate data")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	storeStatus := "connected"
	if err := h.ledger.Ping(ctx); err != nil {
		storeStatus = "disconnected"
	}

	cacheStatus := "connected"
	if err := h.cache.Ping(ctx); err != nil {
		cacheStatus = "disconnected"
	}

	healthy := storeStatus == "connected" && cacheStatus == "connected"
	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"store": storeStatus,
			"cache": cacheStatus,
		},
	})
}

// isValidURL accepts only absolute URLs with a host
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
