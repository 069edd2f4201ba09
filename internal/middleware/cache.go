package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks a response as publicly cacheable for maxAgeSeconds.
// Used on the language catalog, which only changes between deployments.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	header := fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	return func(c *gin.Context) {
		c.Header("Cache-Control", header)
		c.Next()
	}
}
