package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

var staticExtensions = []string{
	".css", ".js", ".jpg", ".jpeg", ".png", ".gif", ".svg",
	".ico", ".woff", ".woff2", ".ttf", ".eot",
}

// CacheControl sets default cache headers by path. API responses carry
// signed playback URLs and per-user progress, so they must never be cached
// by intermediaries; static assets are immutable and cache for a year.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case strings.HasPrefix(path, "/api"):
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		case hasStaticExtension(path):
			c.Header("Cache-Control", "public, max-age=31536000")
		}

		c.Next()
	}
}

func hasStaticExtension(path string) bool {
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
