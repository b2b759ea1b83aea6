package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/coursepath/backend/docs"
	"github.com/coursepath/backend/internal/auth/middleware"
	"github.com/coursepath/backend/internal/auth/service"
	"github.com/coursepath/backend/internal/config"
	"github.com/coursepath/backend/internal/content"
	"github.com/coursepath/backend/internal/handlers"
	"github.com/coursepath/backend/internal/jobs"
	"github.com/coursepath/backend/internal/logger"
	loggerMiddleware "github.com/coursepath/backend/internal/logger/middleware"
	sharedMiddleware "github.com/coursepath/backend/internal/middlewares"
	"github.com/coursepath/backend/internal/observability"
	"github.com/coursepath/backend/internal/repositories"
	"github.com/coursepath/backend/internal/services"
	"github.com/coursepath/backend/internal/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title CoursePath Learn API
// @version 1.0
// @description API for the course lesson player: step navigation, sessions and progress

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting CoursePath Learn Service")

	rules, err := config.LoadXPRules(cfg.XPRulesPath)
	if err != nil {
		logger.Logger.Fatal("Failed to load XP rules", zap.Error(err))
	}

	shutdownTracing := observability.InitTracing(context.Background(), logger.Logger, cfg.Telemetry)

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	store, closeStore := sessionStore(cfg)
	defer closeStore()

	tokenValidator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	xpRepo := repositories.NewXPRepository(db)
	repos := services.Repositories{
		Courses:     repositories.NewCourseRepository(db),
		Units:       repositories.NewUnitRepository(db),
		Lessons:     repositories.NewLessonRepository(db),
		Quizzes:     repositories.NewQuizRepository(db),
		Enrollments: repositories.NewEnrollmentRepository(db),
		Progress:    repositories.NewProgressRepository(db),
		XP:          xpRepo,
	}

	streakJob := startStreakExpiry(cfg.Jobs.StreakExpiryCron, xpRepo)

	// Initialize services
	playerService := services.NewPlayerService(repos, content.NewRenderer(), rules, logger.Logger)
	progressService := services.NewProgressService(repos, rules, logger.Logger)
	sessionService := services.NewSessionService(store, playerService, cfg.Session.TTL, logger.Logger)

	// Initialize handlers
	playerHandler := handlers.NewPlayerHandler(playerService, logger.Logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, sessionService, logger.Logger)

	authMiddleware := middleware.AuthMiddleware(tokenValidator)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestBytes))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(cfg.Server.PublicURL+"/swagger/doc.json"),
	))

	r.Route(handlers.APIPrefix, func(r chi.Router) {
		playerHandler.RegisterRoutes(r, authMiddleware)
		sessionHandler.RegisterRoutes(r, authMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if streakJob != nil {
		streakJob.Stop()
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Logger.Warn("Tracer provider shutdown failed", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// startStreakExpiry starts the nightly streak expiry job unless it is disabled
func startStreakExpiry(expr string, repo jobs.StreakRepository) *jobs.StreakExpiry {
	if expr == "" || strings.EqualFold(expr, "off") {
		logger.Logger.Info("Streak expiry job disabled")
		return nil
	}

	job, err := jobs.NewStreakExpiry(expr, repo, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create streak expiry job", zap.Error(err))
	}
	job.Start()
	return job
}

// sessionStore picks Redis when an address is configured and process memory otherwise
func sessionStore(cfg *config.Config) (services.SessionStore, func()) {
	if cfg.Redis.Addr == "" {
		logger.Logger.Info("REDIS_ADDR not set, keeping sessions in memory")
		return sessions.NewMemoryStore(), func() {}
	}

	rdb, err := sessions.Connect(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	return sessions.NewRedisStore(rdb), func() { rdb.Close() }
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "learn_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// The binary may run from the repository root or from cmd/api
	migrationPath := "file://migrations"
	for _, dir := range []string{"migrations", "../migrations", "../../migrations"} {
		if _, err := os.Stat(dir); err == nil {
			migrationPath = "file://" + dir
			break
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
