package enrollment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches plan and enrollment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly, allUsers []gin.HandlerFunc) {
	plans := router.Group("/schools/:schoolId/plans")
	plans.GET("", append(allUsers, handler.ListPlans)...)
	plans.POST("", append(adminOnly, handler.CreatePlan)...)

	router.PUT("/plans/:planId", append(adminOnly, handler.UpdatePlan)...)
	router.DELETE("/plans/:planId", append(adminOnly, handler.DeletePlan)...)

	enrollments := router.Group("/enrollments")
	enrollments.GET("", append(adminOnly, handler.List)...)
	enrollments.GET("/mine", append(allUsers, handler.ListMine)...)
	enrollments.POST("", append(adminOnly, handler.Create)...)
	enrollments.POST("/:enrollmentId/cancel", append(adminOnly, handler.Cancel)...)
}
