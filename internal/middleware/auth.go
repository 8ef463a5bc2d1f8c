package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader is the header clients authenticate with.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware rejects requests whose X-API-Key header does not match the
// configured key. The comparison is constant-time.
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	key := []byte(apiKey)
	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(APIKeyHeader))
		if len(provided) != len(key) || subtle.ConstantTimeCompare(provided, key) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Could not validate API key",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
