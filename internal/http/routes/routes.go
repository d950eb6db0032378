package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/internal/features/auth"
	"github.com/mkamel7/academy-server-go/internal/features/course"
	"github.com/mkamel7/academy-server-go/internal/features/enrollment"
	"github.com/mkamel7/academy-server-go/internal/features/lesson"
	coursemodule "github.com/mkamel7/academy-server-go/internal/features/module"
	"github.com/mkamel7/academy-server-go/internal/features/progress"
	"github.com/mkamel7/academy-server-go/internal/features/school"
	"github.com/mkamel7/academy-server-go/internal/features/track"
	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/internal/middleware"
	"github.com/mkamel7/academy-server-go/pkg/cache"
	"github.com/mkamel7/academy-server-go/pkg/config"
	"github.com/mkamel7/academy-server-go/pkg/email"
	"github.com/mkamel7/academy-server-go/pkg/health"
	"github.com/mkamel7/academy-server-go/pkg/types"
	"github.com/mkamel7/academy-server-go/pkg/videostream"
)

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, videoClient *videostream.Client, emailClient *email.Client, cacheClient cache.Client) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Database stats endpoint (protected in production)
	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	// Middleware chains by privilege level.
	// Note: SuperAdmin automatically has access to everything (handled in RequireRoles)
	adminOnly := []gin.HandlerFunc{middleware.RequireRoles(db, cfg.JWTSecret, logger, types.UserTypeAdmin)}
	staffOnly := []gin.HandlerFunc{middleware.RequireRoles(db, cfg.JWTSecret, logger, types.UserTypeAdmin, types.UserTypeInstructor)}
	allUsers := []gin.HandlerFunc{middleware.RequireRoles(db, cfg.JWTSecret, logger, types.UserTypeAll)}

	authHandler := auth.NewHandler(db, logger, cfg, emailClient)
	auth.RegisterRoutes(api, authHandler)

	userHandler := user.NewHandler(db, logger)
	user.RegisterRoutes(api, userHandler, adminOnly)

	schoolHandler := school.NewHandler(db, logger)
	school.RegisterRoutes(api, schoolHandler, adminOnly, allUsers)

	trackHandler := track.NewHandler(db, logger)
	track.RegisterRoutes(api, trackHandler, adminOnly, allUsers)

	courseHandler := course.NewHandler(db, logger)
	course.RegisterRoutes(api, courseHandler, staffOnly, allUsers)

	moduleHandler := coursemodule.NewHandler(db, logger)
	coursemodule.RegisterRoutes(api, moduleHandler, staffOnly, allUsers)

	lessonHandler := lesson.NewHandler(db, logger, videoClient)
	lesson.RegisterRoutes(api, lessonHandler, staffOnly, allUsers)

	enrollmentHandler := enrollment.NewHandler(db, logger, emailClient)
	enrollment.RegisterRoutes(api, enrollmentHandler, adminOnly, allUsers)

	progressHandler := progress.NewHandler(db, logger, cacheClient, videoClient)
	progress.RegisterRoutes(api, progressHandler, allUsers)
}
