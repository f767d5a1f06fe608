package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"car-auction/services/auction/helpers"
	"car-auction/utils"

	"github.com/gin-gonic/gin"
)

// AdminTokenHeader carries the shared admin secret on privileged requests.
const AdminTokenHeader = "X-Admin-Token"

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// PrivilegedCallerMiddleware marks requests carrying the admin token as
// privileged. Handlers use the flag to decide between masked and raw
// phone numbers; it never rejects a request on its own.
func PrivilegedCallerMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminToken != "" {
			token := c.GetHeader(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) == 1 {
				c.Set(helpers.PrivilegedKey, true)
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects requests that were not marked privileged.
func RequireAdmin(c *gin.Context) {
	if !helpers.IsPrivileged(c) {
		utils.JSONError(c, http.StatusUnauthorized, errors.New("admin token required"), "admin token required")
		utils.Warn("unauthorized admin request", map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Abort()
		return
	}
	c.Next()
}
