package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// StatusService reports indexing progress
type StatusService struct {
	checkpoints repositories.CheckpointRepository
}

// NewStatusService creates a new status service
func NewStatusService(checkpoints repositories.CheckpointRepository) *StatusService {
	return &StatusService{checkpoints: checkpoints}
}

// StatusDTO is the API representation of indexing progress.
// Nil fields mean the value has not been recorded yet.
type StatusDTO struct {
	Checkpoint          *uint64    `json:"checkpoint"`
	CheckpointUpdatedAt *time.Time `json:"checkpoint_updated_at,omitempty"`
	SyncHead            *uint64    `json:"sync_head"`
	SyncHeadUpdatedAt   *time.Time `json:"sync_head_updated_at,omitempty"`
}

// StatusResponse is the API response for status queries
type StatusResponse struct {
	Data StatusDTO `json:"data"`
}

// GetStatus reads the checkpoint and the sync head
func (s *StatusService) GetStatus(ctx context.Context) (*StatusResponse, error) {
	cp, err := s.checkpoints.GetCheckpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	head, err := s.checkpoints.GetSyncHead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync head: %w", err)
	}

	var dto StatusDTO
	if cp != nil {
		dto.Checkpoint = &cp.LastParsedBlock
		dto.CheckpointUpdatedAt = &cp.UpdatedAt
	}
	if head != nil {
		dto.SyncHead = &head.LatestBlock
		dto.SyncHeadUpdatedAt = &head.UpdatedAt
	}

	return &StatusResponse{Data: dto}, nil
}
