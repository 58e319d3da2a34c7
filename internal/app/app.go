package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natours_backend/database"
	"natours_backend/internal/auth"
	"natours_backend/internal/config"
	"natours_backend/internal/email"
	"natours_backend/internal/handlers"
	"natours_backend/internal/logger"
	"natours_backend/internal/middleware"
	"natours_backend/internal/repositories"
	"natours_backend/internal/routes"
	"natours_backend/internal/services"
	"natours_backend/internal/validator"
	"natours_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func Run() {
	cfg, err := config.Load()
	if err != nil {
		// логгер еще не настроен - пишем в stderr
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), sqlDB); err != nil {
			logger.Fatal("Failed to apply migrations", "error", err)
		}
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize notifier", "error", err)
	}

	svc := newServices(cfg, notifier)
	if err := seedFirstAdmin(gormDB, cfg, svc.UserService); err != nil {
		// Если не удалось создать админа - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workers.NewResetTokenWorker(gormDB, repositories.NewUserRepository(), workers.DefaultResetSweepInterval, time.Now).
		Start(workerCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           SetupRouter(cfg, gormDB, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
	logger.Info("Server exited")
}

// SetupRouter собирает gin.Engine поверх готовых сервисов
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, svc *services.ServiceContainer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appHandlers := handlers.NewAppHandlers(svc, validator.New(),
		handlers.CookieConfig{TTL: cfg.JWT.CookieTTL, Secure: cfg.IsProduction()},
		cfg.Auth.ResetURLBase,
	)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, middleware.Protect(svc.AuthService))
	return ginRouter
}

func newServices(cfg *config.Config, notifier email.Notifier) *services.ServiceContainer {
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, time.Now)
	return services.NewServiceContainer(tokens, notifier, services.AuthOptions{
		BcryptCost:          cfg.Auth.BcryptCost,
		ResetTokenTTL:       cfg.Auth.ResetTokenTTL,
		PasswordChangedSkew: cfg.Auth.PasswordChangedSkew,
		Now:                 time.Now,
	})
}

// newNotifier: без SMTP письма только пишутся в лог
func newNotifier(cfg *config.Config) (email.Notifier, error) {
	if !cfg.Email.Enabled {
		logger.Warn("Email delivery is disabled, messages will be logged")
		return email.NewLogNotifier(), nil
	}
	smtpCfg := email.DefaultConfig()
	smtpCfg.Host = cfg.Email.SMTPHost
	smtpCfg.Port = cfg.Email.SMTPPort
	smtpCfg.Username = cfg.Email.SMTPUsername
	smtpCfg.Password = cfg.Email.SMTPPassword
	smtpCfg.FromEmail = cfg.Email.FromEmail
	smtpCfg.FromName = cfg.Email.FromName
	return email.NewSMTPNotifier(smtpCfg)
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config, users services.UserService) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	created, err := users.EnsureAdmin(db, "Admin", cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if created {
		logger.Warn("First admin created", "email", cfg.Admin.Email)
	} else {
		logger.Info("Admin user already exists. Skipping creation.", "email", cfg.Admin.Email)
	}
	return nil
}
