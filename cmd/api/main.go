package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/registro-api/docs" // Swagger docs
	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/database"
	"github.com/sjperalta/registro-api/internal/handlers"
	"github.com/sjperalta/registro-api/internal/jobs"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/middleware"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/sjperalta/registro-api/internal/services"
	"github.com/sjperalta/registro-api/internal/storage"
	"github.com/sjperalta/registro-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Registro Contratti API
// @version 1.0
// @description Operations API for the contract registry lifecycle batch and notifications

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	m := metrics.New(prometheus.DefaultRegisterer)
	repos := repository.NewRepositories(db, audit.NewInterceptor(audit.WithMetrics(m)))

	worker := jobs.NewWorker(cfg.WorkerCount, jobs.WithLocation(cfg.Location))
	logger.Info("Started background worker", "max_concurrent", worker.GetStats().MaxConcurrent, "timezone", cfg.Timezone)

	var archive *storage.LocalStorage
	if cfg.ReportArchivePath != "" {
		archive, err = storage.NewLocalStorage(cfg.ReportArchivePath)
		if err != nil {
			logger.Error("Failed to initialize report archive", "error", err)
			os.Exit(1)
		}
		logger.Info("Archiving digest workbooks", "path", cfg.ReportArchivePath)
	}

	svcs := services.NewServices(repos, worker, archive, cfg, m)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	created, err := svcs.Notification.SeedOperations(seedCtx)
	cancelSeed()
	if err != nil {
		logger.Error("Failed to seed notification operations", "error", err)
		os.Exit(1)
	}
	if created > 0 {
		logger.Info("Seeded notification operations", "created", created)
	}

	if err := svcs.Job.RegisterLifecycleJobs(); err != nil {
		logger.Error("Failed to schedule lifecycle jobs", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Running batches see a cancelled context and stop before the next record
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/contracts", h.Contract.Index)
			protected.GET("/contracts/:contract_id", h.Contract.Show)

			protected.GET("/jobs/status", h.Job.Status)
			protected.POST("/jobs/:name/run", h.Job.Run)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("/catalog", h.Notification.Catalog)
				notifications.GET("/catalog/:code/subject", h.Notification.Subject)
				notifications.GET("/operations", h.Notification.Operations)
				notifications.PATCH("/operations/:code", middleware.RequireAdmin(), h.Notification.UpdateOperation)
			}
		}
	}

	return router
}
