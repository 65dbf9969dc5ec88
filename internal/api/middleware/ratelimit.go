package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reachpaglu/scamwatch/internal/config"
	"github.com/reachpaglu/scamwatch/internal/ratelimit"
)

// IdentifierFunc extracts the rate-limit identifier from a request.
// The default is the client IP.
type IdentifierFunc func(c *gin.Context) string

// ClientIP is the default rate-limit identifier
func ClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit returns a gin middleware enforcing the route's sliding-window
// rule. Quota headers are set on every response; an exhausted window
// aborts with 429 before the handler runs.
func RateLimit(limiter ratelimit.Limiter, route string, rule config.RateLimitRule, identify IdentifierFunc) gin.HandlerFunc {
	if identify == nil {
		identify = ClientIP
	}
	return func(c *gin.Context) {
		result := limiter.Allow(c.Request.Context(), route, identify(c), rule.Window(), rule.Max)

		if !result.FailedOpen {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		}

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later.",
			})
			return
		}

		c.Next()
	}
}
