package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/application/services"
	"github.com/bimakw/ledger-indexer/internal/config"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/cache"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/ethereum"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/logging"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/storage"
	"github.com/bimakw/ledger-indexer/internal/presentation/handlers"
	"github.com/bimakw/ledger-indexer/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ledger-indexer API",
		zap.Int("port", cfg.API.Port),
	)

	if cfg.Indexer.Store != config.StorePostgres {
		logger.Fatal("The query API needs the shared PostgreSQL store; with INDEXER_STORE=memory the indexer serves /api/v1 itself")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open store
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	// Connect to Redis cache (optional)
	var responseCache services.ResponseCache
	var cacheChecker handlers.HealthChecker
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
	} else {
		defer redisCache.Close()
		responseCache = redisCache
		cacheChecker = redisCache
	}

	// Connect to Ethereum node (optional, used for on-chain balance lookups)
	var contractCaller ethereum.ContractCaller
	ethClient, err := ethereum.NewClient(ctx, cfg.Ethereum, logger)
	if err != nil {
		logger.Warn("Failed to connect to Ethereum node, on-chain lookups disabled", zap.Error(err))
	} else {
		defer ethClient.Close()
		contractCaller = ethClient
	}

	// Create services
	holdersService := services.NewHoldersService(store.Ledger, contractCaller, responseCache, logger)
	transactionService := services.NewTransactionService(store.Transactions, responseCache, logger)
	statusService := services.NewStatusService(store.Checkpoints)

	// Create handlers
	holdersHandler := handlers.NewHoldersHandler(holdersService, logger)
	transactionHandler := handlers.NewTransactionHandler(transactionService, logger)
	statusHandler := handlers.NewStatusHandler(statusService, logger)
	healthHandler := handlers.NewHealthHandler(store).WithCheck("cache", cacheChecker, false)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.NewHTTPMetrics(prometheus.DefaultRegisterer).Handler)
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		r.Route("/api/v1", handlers.APIRoutes(holdersHandler, transactionHandler, statusHandler))
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
