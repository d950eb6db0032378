package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkamel7/academy-server-go/internal/bootstrap"
	"github.com/mkamel7/academy-server-go/internal/http/routes"
	"github.com/mkamel7/academy-server-go/pkg/cache"
	"github.com/mkamel7/academy-server-go/pkg/config"
	"github.com/mkamel7/academy-server-go/pkg/database"
	"github.com/mkamel7/academy-server-go/pkg/email"
	"github.com/mkamel7/academy-server-go/pkg/jobs"
	"github.com/mkamel7/academy-server-go/pkg/logger"
	"github.com/mkamel7/academy-server-go/pkg/metrics"
	"github.com/mkamel7/academy-server-go/pkg/middleware"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/videostream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectWithRetry(ctx, cfg.Database, appLogger, 5, time.Second)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := bootstrap.EnsureDefaultSuperAdmin(db, appLogger); err != nil {
		appLogger.Error("ensure super admin failed", slog.String("error", err.Error()))
	}

	// Cache backend: Redis when configured, in-process fallback otherwise.
	var cacheClient cache.Client
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("redis unavailable, using in-memory cache", slog.String("error", err.Error()))
			cacheClient = cache.NewMemoryCache()
		} else {
			appLogger.Info("redis cache connected", slog.String("addr", cfg.Redis.Addr))
			cacheClient = redisClient
		}
	} else {
		cacheClient = cache.NewMemoryCache()
	}
	defer cacheClient.Close()

	videoClient := videostream.NewClient(cfg.Video)

	emailClient := email.NewClient(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
		cfg.Email.Secure,
	)

	scheduler := jobs.NewScheduler(appLogger)
	scheduler.AddJob(jobs.NewEnrollmentExpirationJob(db, appLogger), time.Hour)
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.New()

	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Compression(middleware.BestSpeed))
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CacheControl())
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024)) // 10MB limit
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	// Rate limiting (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	router.Use(rateLimiter.Middleware())

	routes.Register(router, cfg, db, appLogger, videoClient, emailClient, cacheClient)

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	appLogger.Info("server started successfully")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
