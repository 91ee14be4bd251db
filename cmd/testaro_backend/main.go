package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	_ "github.com/testaro/testaro_backend/cmd/docs"
	"github.com/testaro/testaro_backend/internal/adapters/cache"
	"github.com/testaro/testaro_backend/internal/adapters/database/pgsql"
	"github.com/testaro/testaro_backend/internal/adapters/notifier"
	portsc "github.com/testaro/testaro_backend/internal/core/ports"
	"github.com/testaro/testaro_backend/internal/core/services"
	"github.com/testaro/testaro_backend/internal/handlers"
	"github.com/testaro/testaro_backend/internal/middleware"
	"github.com/testaro/testaro_backend/internal/platform/config"
	"github.com/testaro/testaro_backend/pkg/database"
)

// @title Testaro Backend API
// @version 1.0
// @description Identity and session backend for the Testaro platform.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool, logger)

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis backs the duplicate-signup guard; the service degrades gracefully
	// without it, so a connection failure is fatal only when an address is set.
	var signupGuard portsc.SignupGuardCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		signupGuard = cache.NewRedisSignupGuard(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, duplicate-signup guard disabled")
		signupGuard = cache.NewNoopSignupGuard()
	}

	var notifierAdapter portsc.Notifier
	if cfg.PostmarkServerToken != "" {
		notifierAdapter, err = notifier.NewPostmarkNotifier(cfg)
		if err != nil {
			logger.Error("Failed to configure postmark notifier", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("POSTMARK_SERVER_TOKEN not set, emails will be logged instead of sent")
		notifierAdapter = notifier.NewLogNotifier(logger)
	}

	userRepo := pgsql.NewUserRepository(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, userRepo, signupGuard, notifierAdapter, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
