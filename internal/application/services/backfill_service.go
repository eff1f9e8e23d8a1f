package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/config"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// BackfillState is a step of the backfill state machine
type BackfillState string

const (
	BackfillInit              BackfillState = "INIT"
	BackfillFetchingHead      BackfillState = "FETCHING_HEAD"
	BackfillLoadingCheckpoint BackfillState = "LOADING_CHECKPOINT"
	BackfillBackfilling       BackfillState = "BACKFILLING"
	BackfillDone              BackfillState = "DONE"
)

// BackfillService replays history from the persisted checkpoint up to the
// chain head observed at start, one batch at a time. The checkpoint only
// advances after every block of a batch has settled.
type BackfillService struct {
	chain       ChainReader
	processor   *BlockProcessor
	checkpoints repositories.CheckpointRepository
	config      config.IndexerConfig
	metrics     *PipelineMetrics
	logger      *zap.Logger

	mu    sync.RWMutex
	state BackfillState
}

// NewBackfillService creates a new backfill service
func NewBackfillService(
	chain ChainReader,
	processor *BlockProcessor,
	checkpoints repositories.CheckpointRepository,
	cfg config.IndexerConfig,
	metrics *PipelineMetrics,
	logger *zap.Logger,
) *BackfillService {
	return &BackfillService{
		chain:       chain,
		processor:   processor,
		checkpoints: checkpoints,
		config:      cfg,
		metrics:     metrics,
		logger:      logger,
		state:       BackfillInit,
	}
}

// State returns the current state of the backfill
func (s *BackfillService) State() BackfillState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *BackfillService) setState(state BackfillState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Debug("Backfill state changed", zap.String("state", string(state)))
}

// Run processes blocks [checkpoint, head) and returns the head it ran up to.
// Per-block failures are logged and skipped; only an unreadable head or
// checkpoint, or ctx cancellation between batches, stop the run.
func (s *BackfillService) Run(ctx context.Context) (uint64, error) {
	s.setState(BackfillFetchingHead)
	head, err := s.chain.HeadHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain head: %w", err)
	}

	s.setState(BackfillLoadingCheckpoint)
	start, err := s.loadCheckpoint(ctx)
	if err != nil {
		return 0, err
	}

	s.setState(BackfillBackfilling)
	s.logger.Info("Starting backfill",
		zap.Uint64("from_block", start),
		zap.Uint64("head", head),
		zap.Int("batch_size", s.config.BatchSize),
	)

	var ranges []BlockRange
	if start < head {
		ranges = SplitBlockRange(start, head-1, s.config.BatchSize)
	}

	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		batchStart := time.Now()
		result := s.processor.ProcessRange(ctx, r, s.config.BatchSize, PhaseBackfill)
		s.metrics.BatchDuration.WithLabelValues(PhaseBackfill).Observe(time.Since(batchStart).Seconds())

		// Blocks cut short by cancellation were not written; the checkpoint must not pass them.
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		// The final batch is followed by the DONE step, which persists the head itself.
		if i < len(ranges)-1 {
			s.saveCheckpoint(ctx, r.To)
		}

		s.logger.Info("Backfill progress",
			zap.Int("batch", i+1),
			zap.Int("total_batches", len(ranges)),
			zap.Uint64("from", r.From),
			zap.Uint64("to", r.To),
			zap.Int("processed", result.Processed),
			zap.Int("skipped", result.Skipped),
			zap.Int("transactions", result.Transactions),
			zap.Int("actions", result.Actions),
		)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.saveCheckpoint(ctx, head)
	if err := s.checkpoints.SaveSyncHead(ctx, head); err != nil {
		s.logger.Error("Failed to persist sync head", zap.Uint64("block", head), zap.Error(err))
	} else {
		s.metrics.SyncHead.Set(float64(head))
	}
	s.setState(BackfillDone)

	s.logger.Info("Backfill completed", zap.Uint64("head", head))
	return head, nil
}

func (s *BackfillService) loadCheckpoint(ctx context.Context) (uint64, error) {
	cp, err := s.checkpoints.GetCheckpoint(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if cp == nil {
		if err := s.checkpoints.SaveCheckpoint(ctx, 0); err != nil {
			s.logger.Error("Failed to initialize checkpoint", zap.Error(err))
		}
		return 0, nil
	}

	return cp.LastParsedBlock, nil
}

// saveCheckpoint logs instead of failing: a lost write only means more
// blocks are replayed after the next restart
func (s *BackfillService) saveCheckpoint(ctx context.Context, block uint64) {
	if err := s.checkpoints.SaveCheckpoint(ctx, block); err != nil {
		s.logger.Error("Failed to persist checkpoint", zap.Uint64("block", block), zap.Error(err))
		return
	}
	s.metrics.Checkpoint.Set(float64(block))
}
