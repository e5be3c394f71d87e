// Package middleware contains Gin middleware: operator auth, CORS, and
// rate limiting.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OperatorAuth returns middleware that validates the operator API key via
// the X-API-Key header or an api_key query parameter. With no keys
// configured the API is open: this is a single-operator tool and auth is
// opt-in.
func OperatorAuth(validKeys []string) gin.HandlerFunc {
	keySet := make(map[string]struct{}, len(validKeys))
	for _, k := range validKeys {
		keySet[k] = struct{}{}
	}

	return func(c *gin.Context) {
		if len(keySet) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing API key",
			})
			return
		}

		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}
