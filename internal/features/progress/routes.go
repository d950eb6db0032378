package progress

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches progress and playback endpoints to the router.
// Everything here is per-viewer, so every route requires a session.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers []gin.HandlerFunc) {
	lessons := router.Group("/lessons/:lessonId")
	lessons.PATCH("/progress", append(allUsers, handler.SaveProgress)...)
	lessons.GET("/progress", append(allUsers, handler.GetProgress)...)
	lessons.POST("/complete", append(allUsers, handler.Complete)...)
	lessons.GET("/video", append(allUsers, handler.VideoURL)...)

	courses := router.Group("/courses/:courseId")
	courses.GET("/progress", append(allUsers, handler.CourseProgress)...)
	courses.GET("/unlocks", append(allUsers, handler.CourseUnlocks)...)
}
