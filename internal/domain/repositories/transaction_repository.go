package repositories

import (
	"context"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// TransactionRepository defines the read side for indexed transactions
type TransactionRepository interface {
	// GetByHash retrieves a transaction by hash, or nil if not indexed
	GetByHash(ctx context.Context, hash string) (*entities.IndexedTransaction, error)

	// GetByFilter lists transactions sent or received by an address, newest first
	GetByFilter(ctx context.Context, filter entities.TransactionFilter) ([]entities.IndexedTransaction, error)
}
