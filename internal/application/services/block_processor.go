package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/ledger"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/ethereum"
)

// ChainReader is the read-only view of the chain the pipeline needs
type ChainReader interface {
	HeadHeight(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64) (*entities.Block, error)
}

// BlockResult describes what processing one block produced
type BlockResult struct {
	Number       uint64
	Found        bool
	Transactions int
	Actions      int
}

// RangeResult summarises a concurrently processed range
type RangeResult struct {
	Range        BlockRange
	Processed    int
	Skipped      int
	Transactions int
	Actions      int
}

// BlockProcessor turns one block into one idempotent write batch
type BlockProcessor struct {
	chain      ChainReader
	ledgerRepo repositories.LedgerRepository
	metrics    *PipelineMetrics
	logger     *zap.Logger
}

// NewBlockProcessor creates a new block processor
func NewBlockProcessor(
	chain ChainReader,
	ledgerRepo repositories.LedgerRepository,
	metrics *PipelineMetrics,
	logger *zap.Logger,
) *BlockProcessor {
	return &BlockProcessor{
		chain:      chain,
		ledgerRepo: ledgerRepo,
		metrics:    metrics,
		logger:     logger,
	}
}

// BuildBlockWrite indexes every transaction of block and derives the
// balance deltas of the decoded actions
func BuildBlockWrite(block *entities.Block) repositories.BlockWrite {
	write := repositories.BlockWrite{
		BlockNumber:  block.Number,
		Transactions: make([]entities.IndexedTransaction, 0, len(block.Transactions)),
	}

	for _, raw := range block.Transactions {
		tx := entities.IndexedTransaction{
			Hash:           raw.Hash,
			BlockNumber:    block.Number,
			BlockTimestamp: block.Timestamp,
			Nonce:          raw.Nonce,
			From:           raw.From,
			To:             raw.To,
			Value:          bigString(raw.Value),
			Gas:            raw.Gas,
			GasPrice:       bigString(raw.GasPrice),
			Input:          ethereum.EncodeInput(raw.Input),
			BlockGasUsed:   block.GasUsed,
			Action:         ethereum.DecodeAction(raw),
		}

		write.Transactions = append(write.Transactions, tx)
		write.Deltas = append(write.Deltas, ledger.DeltasFor(tx.Hash, tx.Action)...)
	}

	return write
}

// ProcessBlock fetches block number, builds its write batch and submits it.
// A missing block is not an error.
func (p *BlockProcessor) ProcessBlock(ctx context.Context, number uint64) (*BlockResult, error) {
	block, err := p.chain.BlockByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch block %d: %w", number, err)
	}

	result := &BlockResult{Number: number}
	if block == nil {
		return result, nil
	}
	result.Found = true

	write := BuildBlockWrite(block)
	if write.Empty() {
		return result, nil
	}

	if err := p.ledgerRepo.WriteBlock(ctx, write); err != nil {
		return nil, fmt.Errorf("failed to write block %d: %w", number, err)
	}

	result.Transactions = len(write.Transactions)
	result.Actions = len(write.Deltas) / 2

	p.metrics.TransactionsIndexed.Add(float64(result.Transactions))
	p.metrics.ActionsDecoded.Add(float64(result.Actions))

	return result, nil
}

// ProcessRange processes every block of r concurrently, at most limit at a
// time, and returns once all of them have settled. A failing block is
// logged and counted as skipped; it never stops the others.
func (p *BlockProcessor) ProcessRange(ctx context.Context, r BlockRange, limit int, phase string) RangeResult {
	result := RangeResult{Range: r}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(limit)

	for number := r.From; number <= r.To; number++ {
		number := number
		g.Go(func() error {
			res, err := p.ProcessBlock(ctx, number)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.Skipped++
				p.metrics.BlocksSkipped.WithLabelValues(phase).Inc()
				p.logger.Error("Skipping block",
					zap.String("phase", phase),
					zap.Uint64("block", number),
					zap.Error(err),
				)
				return nil
			}

			result.Processed++
			result.Transactions += res.Transactions
			result.Actions += res.Actions
			p.metrics.BlocksProcessed.WithLabelValues(phase).Inc()
			return nil
		})

		if number == r.To {
			break
		}
	}

	_ = g.Wait()
	return result
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
