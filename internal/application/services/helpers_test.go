package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/config"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/memory"
	"github.com/bimakw/ledger-indexer/internal/testutil"
)

type pipelineFixture struct {
	chain       *testutil.MockChain
	checkpoints *testutil.MockCheckpointRepository
	store       *memory.Store
	metrics     *PipelineMetrics
	processor   *BlockProcessor
	cfg         config.IndexerConfig
}

func newPipelineFixture(head uint64) *pipelineFixture {
	logger := zap.NewNop()
	chain := testutil.NewMockChain(head)
	store := memory.NewStore(logger)
	metrics := NewPipelineMetrics(prometheus.NewRegistry())

	return &pipelineFixture{
		chain:       chain,
		checkpoints: testutil.NewMockCheckpointRepository(),
		store:       store,
		metrics:     metrics,
		processor:   NewBlockProcessor(chain, store, metrics, logger),
		cfg: config.IndexerConfig{
			BatchSize:    10,
			WorkerCount:  10,
			TailSchedule: "*/15 * * * * *",
		},
	}
}

func (f *pipelineFixture) backfill() *BackfillService {
	return NewBackfillService(f.chain, f.processor, f.checkpoints, f.cfg, f.metrics, zap.NewNop())
}

func (f *pipelineFixture) tail() *TailSyncer {
	return NewTailSyncer(f.chain, f.processor, f.checkpoints, f.cfg, f.metrics, zap.NewNop())
}

func (f *pipelineFixture) balance(holder, contract string) string {
	h := f.store.Holders()[holder]
	entry := h.Entry(contract)
	if entry == nil {
		return ""
	}
	return entry.Balance.String()
}
