package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "cluster-ledger-backend/internal/api/grpc"
	httpapi "cluster-ledger-backend/internal/api/http"
	"cluster-ledger-backend/internal/config"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository/postgres"
	"cluster-ledger-backend/internal/security"
	"cluster-ledger-backend/internal/service"
	"cluster-ledger-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Cluster Ledger Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Ledger configuration", "timezone", cfg.Ledger.Timezone, "currency", cfg.Ledger.CurrencySymbol)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	repos := store.Repos()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.TokenExpiry())

	// Initialize Storage
	logger.Info("Using local storage", "upload_dir", cfg.Storage.UploadDir)
	files, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	policy := storage.Policy{MaxBytes: cfg.MaxUploadBytes(), AllowedTypes: cfg.Storage.AllowedTypes}

	// Initialize Services
	opts := service.LedgerOptions{
		Location:       cfg.Location(),
		CurrencySymbol: cfg.Ledger.CurrencySymbol,
	}
	notifier := service.NewNotifier(repos.Notifications)
	services := httpapi.Services{
		Auth:          service.NewAuthService(repos.Users, tokenManager),
		Members:       service.NewMemberService(store, files, policy),
		Loans:         service.NewLoanService(store, notifier, opts),
		Records:       service.NewRecordService(store, notifier, opts),
		Notifications: service.NewNotificationService(repos.Notifications),
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := httpapi.NewRouter(services, httpapi.RouterOptions{
		Tokens:         tokenManager,
		Files:          files,
		DB:             store,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		MetricsPath:    metricsPath,
	})

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// gRPC health and reflection
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := grpcapi.NewServer(tokenManager, store)
	go grpcServer.WatchDatabase(ctx, 15*time.Second)
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server failed", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Servers stopped")
}
