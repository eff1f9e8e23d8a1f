package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// IndexerService runs the backfill once and then hands off to the tail syncer
type IndexerService struct {
	backfill *BackfillService
	tail     *TailSyncer
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIndexerService creates a new indexer service
func NewIndexerService(backfill *BackfillService, tail *TailSyncer, logger *zap.Logger) *IndexerService {
	return &IndexerService{
		backfill: backfill,
		tail:     tail,
		logger:   logger,
	}
}

// Start begins the indexing process in the background
func (s *IndexerService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if _, err := s.backfill.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("Backfill did not complete", zap.Error(err))
		}

		if err := s.tail.Start(ctx); err != nil {
			s.logger.Error("Failed to start tail sync", zap.Error(err))
		}
	}()
}

// Stop cancels the backfill, stops the tail sync and waits for both
func (s *IndexerService) Stop() {
	s.logger.Info("Stopping indexer service")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.tail.Stop()
}

// State returns the backfill state
func (s *IndexerService) State() BackfillState {
	return s.backfill.State()
}
