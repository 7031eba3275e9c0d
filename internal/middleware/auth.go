package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderServiceKey is the inbound shared-secret header, shared with the
// Apps Script caller.
const HeaderServiceKey = "X-API-Key"

// SharedSecret returns Gin middleware that checks the X-API-Key header
// against the configured service key. An empty key disables the check
// entirely (open access).
func SharedSecret(serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if serviceKey == "" {
			c.Next()
			return
		}
		if c.GetHeader(HeaderServiceKey) != serviceKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid API key"},
			})
			return
		}
		c.Next()
	}
}
