package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/analytics"
	"github.com/medipos/rms-api/internal/backup"
	"github.com/medipos/rms-api/internal/config"
	"github.com/medipos/rms-api/internal/db"
	"github.com/medipos/rms-api/internal/export"
	"github.com/medipos/rms-api/internal/importer"
	"github.com/medipos/rms-api/internal/inventory"
	"github.com/medipos/rms-api/internal/middleware"
	"github.com/medipos/rms-api/internal/notify"
	"github.com/medipos/rms-api/internal/repository"
	"github.com/medipos/rms-api/internal/sales"
	"github.com/medipos/rms-api/internal/users"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional; analytics degrades to uncached queries without it.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
			cache = nil
		}
	}

	medicineRepo := repository.NewMedicineRepository(conn.Pool)
	saleRepo := repository.NewSaleRepository(conn.Pool)
	movementRepo := repository.NewStockMovementRepository(conn.Pool)
	importLogRepo := repository.NewImportLogRepository(conn.Pool)
	userRepo := repository.NewUserRepository(conn.Pool)
	shopRepo := repository.NewShopRepository(conn.Pool)
	backupRepo := repository.NewBackupRepository(conn.Pool)
	notificationRepo := repository.NewNotificationRepository(conn.Pool)
	analyticsRepo := repository.NewAnalyticsRepository(conn.Pool)

	importService := importer.NewService(medicineRepo, importLogRepo, logger)
	inventoryService := inventory.NewService(medicineRepo, movementRepo, shopRepo, logger)
	salesService := sales.NewService(saleRepo, medicineRepo, movementRepo, logger)
	analyticsService := analytics.NewService(analyticsRepo, movementRepo, cache, logger)
	backupService := backup.NewService(backupRepo, medicineRepo, saleRepo, movementRepo, shopRepo, importLogRepo, logger)
	exportService := export.NewService(medicineRepo)
	userService := users.NewService(userRepo)
	notifyService := notify.NewService(medicineRepo, notificationRepo, analyticsRepo, notify.NewTelegramClient(), logger)

	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal("failed to create admin account", zap.Error(err))
	}

	scheduler := notify.NewScheduler(notifyService, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("failed to start notification scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	mux := http.NewServeMux()
	mux.Handle("/api/tally/", importer.NewHTTPHandler(importService))
	mux.Handle("/api/medicines", inventory.NewHTTPHandler(inventoryService))
	mux.Handle("/api/medicines/", inventory.NewHTTPHandler(inventoryService))
	mux.Handle("/api/shop", inventory.NewHTTPHandler(inventoryService))
	mux.Handle("/api/sales", sales.NewHTTPHandler(salesService))
	mux.Handle("/api/analytics/", analytics.NewHTTPHandler(analyticsService))
	mux.Handle("/api/backups", backup.NewHTTPHandler(backupService))
	mux.Handle("/api/backups/", backup.NewHTTPHandler(backupService))
	mux.Handle("/api/export/inventory", export.NewHTTPHandler(exportService))
	mux.Handle("/api/users", users.NewHTTPHandler(userService))
	mux.Handle("/api/users/", users.NewHTTPHandler(userService))
	mux.Handle("/api/notifications/", notify.NewHTTPHandler(notifyService, scheduler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.Logging(logger)(
			middleware.Metrics(mux),
		),
	)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
