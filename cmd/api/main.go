package main

import (
	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/database"
	"computer-inventory-api/internal/handler"
	"computer-inventory-api/internal/notification"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/internal/repository/memory"
	"computer-inventory-api/internal/router"
	"computer-inventory-api/internal/seed"
	"computer-inventory-api/internal/serial"
	"computer-inventory-api/internal/service"
	notificationadapter "computer-inventory-api/internal/service/notification"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const startupTimeout = 30 * time.Second

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	repos, db, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	if err := loadReferenceData(cfg, repos); err != nil {
		logger.Fatalf("Failed to load reference data: %v", err)
	}

	opts := service.Options{
		Logger:                logger,
		NotifyTimeout:         cfg.NotificationService.Timeout,
		WarrantyThresholdDays: cfg.Inventory.WarrantyThresholdDays,
	}

	checks := map[string]handler.HealthCheck{}
	if db != nil {
		checks["database"] = db.PingContext
	}

	if cfg.NotificationService.Enabled() {
		notifier := notification.NewNotifierWithConfig(notification.NotificationConfig{
			URL:            cfg.NotificationService.URL,
			Timeout:        cfg.NotificationService.Timeout,
			RetryAttempts:  cfg.NotificationService.RetryAttempts,
			RetryDelay:     cfg.NotificationService.RetryDelay,
			MaxPayloadSize: cfg.NotificationService.MaxPayloadSize,
		}, logger)
		opts.Notifier = notificationadapter.NewServiceAdapter(notifier)
		checks["notification"] = func(ctx context.Context) error {
			if !notifier.IsHealthy(ctx) {
				return errors.New("notification service unreachable")
			}
			return nil
		}
	} else {
		logger.Println("NOTIFIER_URL not set, notifications are disabled")
	}

	registry := serial.NewRegistry(repos.Manufacturers, cfg.Inventory.SerialPatternCacheSize, cfg.Inventory.SerialPatternCacheTTL)
	computers := service.NewComputerService(repos, serial.NewValidator(registry, repos.Computers), opts)

	r := router.NewRouter(router.Handlers{
		Computers:   handler.NewComputerHandler(computers, logger),
		Users:       handler.NewUserHandler(service.NewUserService(repos, opts), logger),
		Assignments: handler.NewAssignmentHandler(service.NewAssignmentService(repos, opts), logger),
		Reference:   handler.NewReferenceHandler(computers, checks, logger),
	}, cfg, logger)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	var metricsServer *http.Server
	if cfg.Server.EnableMetrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
		}
		go func() {
			logger.Printf("Serving metrics on port %d", cfg.Server.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server failed: %v", err)
			}
		}()
	}

	// Channel to listen for interrupt signal to gracefully shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Printf("Starting server on port %d (storage=%s)", cfg.Port, cfg.Database.Driver)
		logger.Printf("Security: Rate limit=%d RPS, Burst=%d, CORS=%v, Timeout=%v",
			cfg.Security.RateLimitRPS,
			cfg.Security.RateLimitBurst,
			cfg.Security.EnableCORS,
			cfg.Security.RequestTimeout,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-done
	logger.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Printf("Metrics server forced to shutdown: %v", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	} else {
		logger.Println("Server exited gracefully")
	}
}

// openStore returns the repositories for the configured driver. db is nil
// for the in-memory store.
func openStore(cfg *config.Config, logger *log.Logger) (*repository.Store, *sql.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Println("Using in-memory storage; data is lost on restart")
		return memory.NewStore().Repositories(), nil, nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := database.ApplySchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Println("Database schema applied")
	}

	return repository.NewPostgresStore(db), db, nil
}

func loadReferenceData(cfg *config.Config, repos *repository.Store) error {
	data, err := seed.LoadFile(cfg.Inventory.ReferenceDataFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	return seed.Apply(ctx, repos, data)
}
