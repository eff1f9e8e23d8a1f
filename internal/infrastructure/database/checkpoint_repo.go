package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// Ensure CheckpointRepo implements CheckpointRepository
var _ repositories.CheckpointRepository = (*CheckpointRepo)(nil)

const (
	checkpointBackfill = "backfill"
	checkpointSyncHead = "sync_head"
)

// CheckpointRepo implements CheckpointRepository using PostgreSQL.
// Both singletons live in indexer_checkpoints, one row each.
type CheckpointRepo struct {
	db *sqlx.DB
}

// NewCheckpointRepo creates a new checkpoint repository
func NewCheckpointRepo(db *sqlx.DB) *CheckpointRepo {
	return &CheckpointRepo{db: db}
}

type checkpointRow struct {
	BlockNumber int64     `db:"block_number"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *CheckpointRepo) get(ctx context.Context, name string) (*checkpointRow, error) {
	var row checkpointRow
	query := `SELECT block_number, updated_at FROM indexer_checkpoints WHERE name = $1`

	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s checkpoint: %w", name, err)
	}

	return &row, nil
}

func (r *CheckpointRepo) save(ctx context.Context, name string, block uint64) error {
	query := `
		INSERT INTO indexer_checkpoints (name, block_number)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			block_number = GREATEST(indexer_checkpoints.block_number, EXCLUDED.block_number),
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, name, int64(block)); err != nil {
		return fmt.Errorf("failed to save %s checkpoint: %w", name, err)
	}

	return nil
}

// GetCheckpoint returns the backfill checkpoint
func (r *CheckpointRepo) GetCheckpoint(ctx context.Context) (*entities.Checkpoint, error) {
	row, err := r.get(ctx, checkpointBackfill)
	if err != nil || row == nil {
		return nil, err
	}
	return &entities.Checkpoint{
		LastParsedBlock: uint64(row.BlockNumber),
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

// SaveCheckpoint creates or advances the backfill checkpoint
func (r *CheckpointRepo) SaveCheckpoint(ctx context.Context, block uint64) error {
	return r.save(ctx, checkpointBackfill, block)
}

// GetSyncHead returns the tail-sync head
func (r *CheckpointRepo) GetSyncHead(ctx context.Context) (*entities.SyncHead, error) {
	row, err := r.get(ctx, checkpointSyncHead)
	if err != nil || row == nil {
		return nil, err
	}
	return &entities.SyncHead{
		LatestBlock: uint64(row.BlockNumber),
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// SaveSyncHead creates or advances the tail-sync head
func (r *CheckpointRepo) SaveSyncHead(ctx context.Context, block uint64) error {
	return r.save(ctx, checkpointSyncHead, block)
}
