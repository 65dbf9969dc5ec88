package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/logger"
)

// respondBadRequest sends a 400 with the validation message. Validation
// failures are the client's fault and are never logged as server faults.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// respondDuplicate sends the duplicate-report rejection with the flag
// clients use to render "already reported" UX.
func respondDuplicate(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":       "Duplicate report",
		"message":     "You have already reported this account",
		"isDuplicate": true,
	})
}

// respondInternalError logs the full error and sends a generic 500.
// Internal detail is never echoed to the caller.
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, append(fields, zap.String("path", c.Request.URL.Path))...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
