package track

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches track endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly, allUsers []gin.HandlerFunc) {
	tracks := router.Group("/schools/:schoolId/tracks")

	tracks.GET("", append(allUsers, handler.List)...)
	tracks.GET("/:trackId", append(allUsers, handler.GetByID)...)
	tracks.POST("", append(adminOnly, handler.Create)...)
	tracks.PUT("/:trackId", append(adminOnly, handler.Update)...)
	tracks.DELETE("/:trackId", append(adminOnly, handler.Delete)...)
}
