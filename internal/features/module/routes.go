package module

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches module endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, staffOnly, allUsers []gin.HandlerFunc) {
	modules := router.Group("/courses/:courseId/modules")

	modules.GET("", append(allUsers, handler.List)...)
	modules.GET("/:moduleId", append(allUsers, handler.GetByID)...)
	modules.POST("", append(staffOnly, handler.Create)...)
	modules.PUT("/:moduleId", append(staffOnly, handler.Update)...)
	modules.DELETE("/:moduleId", append(staffOnly, handler.Delete)...)
}
