package response

import "github.com/gin-gonic/gin"

// SuccessNoCache sends a successful JSON response with explicit no-store
// headers. Used for payloads carrying signed, expiring URLs that must never
// outlive their token in a shared cache.
func SuccessNoCache(c *gin.Context, status int, data interface{}, message string) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	Success(c, status, data, message, nil)
}
