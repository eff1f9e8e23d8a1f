package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/config"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// TailSyncer keeps the index at the chain head after the backfill
type TailSyncer struct {
	chain       ChainReader
	processor   *BlockProcessor
	checkpoints repositories.CheckpointRepository
	config      config.IndexerConfig
	metrics     *PipelineMetrics
	logger      *zap.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewTailSyncer creates a new tail syncer
func NewTailSyncer(
	chain ChainReader,
	processor *BlockProcessor,
	checkpoints repositories.CheckpointRepository,
	cfg config.IndexerConfig,
	metrics *PipelineMetrics,
	logger *zap.Logger,
) *TailSyncer {
	return &TailSyncer{
		chain:       chain,
		processor:   processor,
		checkpoints: checkpoints,
		config:      cfg,
		metrics:     metrics,
		logger:      logger,
	}
}

// Start schedules Tick on the configured cron expression. A tick that is
// still running when the next one fires causes that one to be skipped.
func (t *TailSyncer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scheduler != nil {
		return fmt.Errorf("tail syncer already started")
	}

	logger := cronLogger{t.logger.Sugar()}
	scheduler := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := scheduler.AddFunc(t.config.TailSchedule, func() { t.Tick(ctx) }); err != nil {
		return fmt.Errorf("invalid tail schedule %q: %w", t.config.TailSchedule, err)
	}

	scheduler.Start()
	t.scheduler = scheduler

	t.logger.Info("Tail sync scheduled", zap.String("schedule", t.config.TailSchedule))
	return nil
}

// Stop stops scheduling and waits for a running tick to finish
func (t *TailSyncer) Stop() {
	t.mu.Lock()
	scheduler := t.scheduler
	t.scheduler = nil
	t.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}

// Tick syncs [syncHead, head]. The first tick only records the head.
// It returns nil when there was nothing to process.
func (t *TailSyncer) Tick(ctx context.Context) *RangeResult {
	head, err := t.chain.HeadHeight(ctx)
	if err != nil {
		t.logger.Error("Failed to get chain head", zap.Error(err))
		return nil
	}

	syncHead, err := t.checkpoints.GetSyncHead(ctx)
	if err != nil {
		t.logger.Error("Failed to load sync head", zap.Error(err))
		return nil
	}

	if syncHead == nil {
		t.saveSyncHead(ctx, head)
		return nil
	}

	if syncHead.LatestBlock >= head {
		return nil
	}

	// The previous head is included again; the store applies each balance
	// delta once, so replaying it is harmless.
	r := BlockRange{From: syncHead.LatestBlock, To: head}

	started := time.Now()
	result := t.processor.ProcessRange(ctx, r, t.config.WorkerCount, PhaseTail)
	t.metrics.BatchDuration.WithLabelValues(PhaseTail).Observe(time.Since(started).Seconds())

	t.saveSyncHead(ctx, head)

	t.logger.Info("Tail sync",
		zap.Uint64("from", r.From),
		zap.Uint64("to", r.To),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("transactions", result.Transactions),
		zap.Int("actions", result.Actions),
	)

	return &result
}

func (t *TailSyncer) saveSyncHead(ctx context.Context, block uint64) {
	if err := t.checkpoints.SaveSyncHead(ctx, block); err != nil {
		t.logger.Error("Failed to persist sync head", zap.Uint64("block", block), zap.Error(err))
		return
	}
	t.metrics.SyncHead.Set(float64(block))
}

// cronLogger routes scheduler logs through zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
