package testutil

import (
	"context"
	"math/big"
	"testing"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

func TestMockChain_BlockByNumber(t *testing.T) {
	chain := NewMockChain(5)
	chain.AddBlocks(CreateTestBlock(3, CreateTestTransaction()))
	ctx := context.Background()

	block, err := chain.BlockByNumber(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.Transactions) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(block.Transactions))
	}

	block, _ = chain.BlockByNumber(ctx, 4)
	if block == nil || len(block.Transactions) != 0 {
		t.Errorf("expected empty block 4, got %+v", block)
	}

	block, _ = chain.BlockByNumber(ctx, 6)
	if block != nil {
		t.Errorf("expected nil beyond head, got %+v", block)
	}

	fetched := chain.FetchedBlocks()
	if len(fetched) != 3 || fetched[0] != 3 {
		t.Errorf("unexpected fetch log %v", fetched)
	}
}

func TestMockCheckpointRepository_Monotonic(t *testing.T) {
	repo := NewMockCheckpointRepository()
	ctx := context.Background()

	for _, b := range []uint64{9, 19, 4} {
		if err := repo.SaveCheckpoint(ctx, b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	cp, _ := repo.GetCheckpoint(ctx)
	if cp.LastParsedBlock != 19 {
		t.Errorf("expected checkpoint 19, got %d", cp.LastParsedBlock)
	}

	writes, heads := repo.Writes()
	if len(writes) != 3 || len(heads) != 0 {
		t.Errorf("unexpected writes %v %v", writes, heads)
	}
}

func TestMockTransactionRepository_GetByFilter(t *testing.T) {
	repo := NewMockTransactionRepository()
	repo.AddTransactions(
		CreateIndexedTransaction(GenerateTxHash(1), 1, AliceAddress, BobAddress),
		CreateIndexedTransaction(GenerateTxHash(2), 2, BobAddress, CharlieAddr),
		CreateIndexedTransaction(GenerateTxHash(3), 3, CharlieAddr, AliceAddress),
	)
	ctx := context.Background()

	txs, err := repo.GetByFilter(ctx, entities.TransactionFilter{Address: AliceAddress, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(txs))
	}

	txs, _ = repo.GetByFilter(ctx, entities.TransactionFilter{Address: BobAddress, Limit: 1, Offset: 1})
	if len(txs) != 1 || txs[0].Hash != GenerateTxHash(2) {
		t.Errorf("unexpected page %+v", txs)
	}
}

func TestCreateTokenTransfer(t *testing.T) {
	tx := CreateTokenTransfer(GenerateTxHash(7), TokenAddress, AliceAddress, BobAddress, big.NewInt(100))
	if tx.To != TokenAddress {
		t.Errorf("expected contract as recipient, got %s", tx.To)
	}
	if len(tx.Input) != 4+32+32 {
		t.Errorf("unexpected input length %d", len(tx.Input))
	}
}
