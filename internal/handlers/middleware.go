package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/utils"
)

const requestIDHeader = "X-Request-ID"

var securityHeaders = map[string]string{
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Referrer-Policy":           "strict-origin-when-cross-origin",
	"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":   "*",
	"Access-Control-Allow-Methods":  "GET, POST, DELETE, OPTIONS",
	"Access-Control-Allow-Headers":  "Content-Type, Authorization, X-Request-ID, X-User-ID, X-User-Role",
	"Access-Control-Expose-Headers": "Content-Length, Content-Disposition, X-Request-ID",
	"Access-Control-Max-Age":        "43200",
}

// SetupMiddleware installs the middleware shared by every route. Order
// matters: the request id must exist before the loggers read it.
func SetupMiddleware(router *gin.Engine, logger utils.Logger) {
	router.Use(
		RequestIDMiddleware(),
		CORSMiddleware(),
		gin.Recovery(),
		utils.ContextLogger(logger),
		utils.LoggerMiddleware(logger),
		SecurityMiddleware(),
	)
}

// DevAuthMiddleware trusts the X-User-ID and X-User-Role headers. It is only
// installed when no identity provider is configured.
func DevAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			abortUnauthorized(c, "X-User-ID header missing")
			return
		}

		role := models.UserRole(strings.ToLower(strings.TrimSpace(c.GetHeader("X-User-Role"))))
		if role != models.RoleAuthor && role != models.RoleAdmin {
			role = models.RoleRespondent
		}

		setUser(c, &models.User{ID: userID, Role: role})
		c.Next()
	}
}

func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range securityHeaders {
			c.Header(name, value)
		}
		c.Next()
	}
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware answers preflight requests itself
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range corsHeaders {
			c.Header(name, value)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
