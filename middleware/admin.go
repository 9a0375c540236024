package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyHeader carries the shared admin key.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth rejects requests whose X-Admin-Key does not match key. An empty
// key disables the admin routes entirely.
func AdminAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			abort(c, http.StatusForbidden, CodeForbidden, "admin api disabled")
			return
		}
		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid admin key")
			return
		}
		c.Next()
	}
}
