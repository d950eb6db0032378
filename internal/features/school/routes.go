package school

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches school endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly, allUsers []gin.HandlerFunc) {
	schools := router.Group("/schools")

	schools.GET("", append(allUsers, handler.List)...)
	schools.GET("/:schoolId", append(allUsers, handler.GetByID)...)
	schools.POST("", append(adminOnly, handler.Create)...)
	schools.PUT("/:schoolId", append(adminOnly, handler.Update)...)
	schools.DELETE("/:schoolId", append(adminOnly, handler.Delete)...)
}
