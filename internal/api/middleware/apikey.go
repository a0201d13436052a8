package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// APIKeyHeader carries the shared secret on /v1 routes
	APIKeyHeader = "X-Reveille-Key"
	// AuthenticatedKey is set on the context once the key matched
	AuthenticatedKey = "authenticated"
)

// APIKey verifies the shared API key
func APIKey(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(APIKeyHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
				"code":  "UNAUTHORIZED",
			})
			return
		}
		c.Set(AuthenticatedKey, true)
		c.Next()
	}
}
