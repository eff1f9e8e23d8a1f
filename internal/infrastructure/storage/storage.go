// Package storage opens the repositories selected by INDEXER_STORE
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/config"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/database"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/memory"
)

// Store bundles the repositories of one backend
type Store struct {
	Driver       string
	Checkpoints  repositories.CheckpointRepository
	Ledger       repositories.LedgerRepository
	Transactions repositories.TransactionRepository

	health func(ctx context.Context) error
	close  func() error
}

// Open connects to the configured backend. PostgreSQL schemas are created
// when missing.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Indexer.Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory store, the index is lost on exit")
		return NewMemory(memory.NewStore(logger)), nil

	case config.StorePostgres:
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Store{
			Driver:       config.StorePostgres,
			Checkpoints:  database.NewCheckpointRepo(db.DB()),
			Ledger:       database.NewLedgerRepo(db.DB()),
			Transactions: database.NewTransactionRepo(db.DB()),
			health:       db.HealthCheck,
			close:        db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Indexer.Store)
	}
}

// NewMemory wraps an in-memory store
func NewMemory(m *memory.Store) *Store {
	return &Store{
		Driver:       config.StoreMemory,
		Checkpoints:  m,
		Ledger:       m,
		Transactions: m,
		health:       m.HealthCheck,
		close:        func() error { return nil },
	}
}

// HealthCheck checks the backend connection
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.health(ctx)
}

// Close releases the backend connection
func (s *Store) Close() error {
	return s.close()
}
