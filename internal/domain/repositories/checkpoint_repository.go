package repositories

import (
	"context"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// CheckpointRepository persists the backfill checkpoint and the tail-sync head.
// Both singletons are monotonic: saving a lower value than the stored one is a no-op.
type CheckpointRepository interface {
	// GetCheckpoint returns the backfill checkpoint, or nil if none was saved
	GetCheckpoint(ctx context.Context) (*entities.Checkpoint, error)

	// SaveCheckpoint creates or advances the backfill checkpoint
	SaveCheckpoint(ctx context.Context, block uint64) error

	// GetSyncHead returns the tail-sync head, or nil if none was saved
	GetSyncHead(ctx context.Context) (*entities.SyncHead, error)

	// SaveSyncHead creates or advances the tail-sync head
	SaveSyncHead(ctx context.Context, block uint64) error
}
