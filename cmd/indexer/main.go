package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/application/services"
	"github.com/bimakw/ledger-indexer/internal/config"
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

	logger.Info("Starting ledger-indexer",
		zap.String("rpc_url", cfg.Ethereum.RPCURL),
		zap.String("store", cfg.Indexer.Store),
		zap.Int("batch_size", cfg.Indexer.BatchSize),
		zap.String("tail_schedule", cfg.Indexer.TailSchedule),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open store
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	// Connect to Ethereum node
	ethClient, err := ethereum.NewClient(ctx, cfg.Ethereum, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}
	defer ethClient.Close()

	// Create pipeline
	metrics := services.NewPipelineMetrics(prometheus.DefaultRegisterer)
	processor := services.NewBlockProcessor(ethClient, store.Ledger, metrics, logger)
	backfill := services.NewBackfillService(ethClient, processor, store.Checkpoints, cfg.Indexer, metrics, logger)
	tail := services.NewTailSyncer(ethClient, processor, store.Checkpoints, cfg.Indexer, metrics, logger)
	indexerService := services.NewIndexerService(backfill, tail, logger)

	// Start admin server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Indexer.MetricsPort),
		Handler:      adminRouter(store, ethClient, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		logger.Info("Admin server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Admin server error", zap.Error(err))
		}
	}()

	// Start indexer
	indexerService.Start(ctx)

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Received shutdown signal, stopping indexer...")

	indexerService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Admin server shutdown error", zap.Error(err))
	}

	logger.Info("Indexer stopped")
}

// adminRouter serves metrics, health and the network switch. With the
// in-memory store it also serves the query API, since no other process can
// read that store.
func adminRouter(store *storage.Store, ethClient *ethereum.Client, logger *zap.Logger) http.Handler {
	chainCheck := handlers.HealthCheckFunc(func(ctx context.Context) error {
		_, err := ethClient.HeadHeight(ctx)
		return err
	})
	healthHandler := handlers.NewHealthHandler(store).WithCheck("chain", chainCheck, false)
	networkHandler := handlers.NewNetworkHandler(ethClient, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.NewHTTPMetrics(prometheus.DefaultRegisterer).Handler)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Get("/network", networkHandler.GetNetwork)
		r.Post("/network", networkHandler.SetNetwork)
	})

	if store.Driver == config.StoreMemory {
		holders := handlers.NewHoldersHandler(services.NewHoldersService(store.Ledger, ethClient, nil, logger), logger)
		transactions := handlers.NewTransactionHandler(services.NewTransactionService(store.Transactions, nil, logger), logger)
		status := handlers.NewStatusHandler(services.NewStatusService(store.Checkpoints), logger)
		r.Route("/api/v1", handlers.APIRoutes(holders, transactions, status))
	}

	return r
}
