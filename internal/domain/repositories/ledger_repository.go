package repositories

import (
	"context"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/ledger"
)

// BlockWrite is everything derived from one block, submitted as one batch
type BlockWrite struct {
	BlockNumber  uint64
	Transactions []entities.IndexedTransaction
	Deltas       []ledger.Delta
}

// Empty reports whether the write carries nothing
func (w BlockWrite) Empty() bool {
	return len(w.Transactions) == 0 && len(w.Deltas) == 0
}

// LedgerRepository is the write side of the indexer
type LedgerRepository interface {
	// WriteBlock upserts transactions by hash and applies each delta whose
	// (tx hash, side) identity has not been applied before. Entries are
	// independent: a failed entry does not stop the others, and the
	// failures are returned joined.
	WriteBlock(ctx context.Context, write BlockWrite) error

	// GetHolder returns the balance ledger of a holder, or nil if unknown
	GetHolder(ctx context.Context, address string) (*entities.HolderTokenBalance, error)
}
