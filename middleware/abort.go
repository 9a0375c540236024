// Package middleware holds the gin middleware shared by every route group.
package middleware

import "github.com/gin-gonic/gin"

// Codes for failures raised before a handler runs. Handler errors use the
// apperr codes; both render as {"error", "code"}.
const (
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL"
)

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
