package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router. The provider
// webhook is registered on the bare router group; it authenticates with the
// shared webhook secret instead of a user session.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, staffOnly, allUsers []gin.HandlerFunc) {
	lessons := router.Group("/modules/:moduleId/lessons")

	lessons.GET("", append(allUsers, handler.List)...)
	lessons.GET("/:lessonId", append(allUsers, handler.GetByID)...)
	lessons.POST("", append(staffOnly, handler.Create)...)
	lessons.PUT("/:lessonId", append(staffOnly, handler.Update)...)
	lessons.DELETE("/:lessonId", append(staffOnly, handler.Delete)...)
	lessons.POST("/:lessonId/upload-url", append(staffOnly, handler.UploadURL)...)

	router.POST("/webhooks/video", handler.VideoWebhook)
}
