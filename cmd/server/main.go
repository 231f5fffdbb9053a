package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/api"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/service"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common/security"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/repository"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/cache"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/config"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/database"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.JSON = cfg.IsProduction()
	log := logger.New(logCfg)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", logger.FieldError, err)
		os.Exit(1)
	}
	common.SetExposeErrorDetails(!cfg.IsProduction())
	log.Info("configuration loaded", "env", cfg.AppEnv, "db_driver", cfg.DBDriver)

	// 2. Initialize Database
	storageLog := log.WithComponent(logger.ComponentStorage)
	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DBDriver, cfg.DSN()); err != nil {
			storageLog.Error("migration failed", logger.FieldOperation, logger.OpMigrate, logger.FieldError, err)
			os.Exit(1)
		}
		storageLog.Info("migrations applied", logger.FieldOperation, logger.OpMigrate)
	}

	db, dialect, err := database.Open(cfg)
	if err != nil {
		storageLog.Error("database connection failed", logger.FieldError, err)
		os.Exit(1)
	}
	defer db.Close()
	storageLog.Info("database connected", "dialect", dialect.Name())

	// 3. Initialize Redis (optional) and the login limiter
	securityLog := log.WithComponent(logger.ComponentSecurity)
	var limiter security.AttemptLimiter
	rdb, err := cache.ConnectRedis(context.Background(), cfg)
	switch {
	case err != nil:
		securityLog.Error("redis connection failed", logger.FieldError, err)
		os.Exit(1)
	case rdb != nil:
		defer rdb.Close()
		limiter = security.NewRedisAttemptLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
		securityLog.Info("login limiter backed by redis", "addr", cfg.RedisAddr)
	default:
		limiter = security.NewMemoryAttemptLimiter(cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
		securityLog.Info("login limiter running in memory")
	}

	// 4. Initialize Repositories
	userRepo := repository.NewSQLUserRepository(db, dialect)
	expenseRepo := repository.NewSQLExpenseRepository(db, dialect)

	// 5. Initialize Services
	tokens := security.NewTokenIssuer(cfg.JWTKey)
	userService := service.NewUserService(userRepo, log)
	services := api.Services{
		Auth:    service.NewAuthService(userRepo, userService, tokens, limiter, log),
		User:    userService,
		Expense: service.NewExpenseService(expenseRepo, userRepo, log),
		Report:  service.NewReportService(expenseRepo, userRepo, log),
	}

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(services, tokens, db, log)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", logger.FieldOperation, logger.OpStartup, "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		log.Error("could not listen", "port", cfg.APIPort, logger.FieldError, err)
		os.Exit(1)
	}

	log.Info("shutting down server", logger.FieldOperation, logger.OpShutdown)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", logger.FieldError, err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}
