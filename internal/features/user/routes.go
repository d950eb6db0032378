package user

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches user management endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly []gin.HandlerFunc) {
	users := router.Group("/users")

	users.GET("", append(adminOnly, handler.List)...)
	users.GET("/:userId", append(adminOnly, handler.GetByID)...)
	users.POST("", append(adminOnly, handler.Create)...)
	users.PUT("/:userId", append(adminOnly, handler.Update)...)
	users.DELETE("/:userId", append(adminOnly, handler.Delete)...)
}
