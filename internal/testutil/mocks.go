package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// ErrMock is a generic error returned by mock hooks in tests
var ErrMock = errors.New("mock error")

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockChain is an in-memory chain serving blocks from a map
type MockChain struct {
	mu     sync.RWMutex
	head   uint64
	blocks map[uint64]*entities.Block

	// Function hooks for custom behavior
	HeadHeightFunc    func(ctx context.Context) (uint64, error)
	BlockByNumberFunc func(ctx context.Context, number uint64) (*entities.Block, error)

	// Call tracking
	Calls []MockCall
}

func NewMockChain(head uint64) *MockChain {
	return &MockChain{
		head:   head,
		blocks: make(map[uint64]*entities.Block),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockChain) HeadHeight(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HeadHeight"})
	m.mu.Unlock()

	if m.HeadHeightFunc != nil {
		return m.HeadHeightFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.head, nil
}

// BlockByNumber returns the stored block, an empty block for known heights
// without one, and nil beyond the head
func (m *MockChain) BlockByNumber(ctx context.Context, number uint64) (*entities.Block, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "BlockByNumber", Args: []interface{}{number}})
	m.mu.Unlock()

	if m.BlockByNumberFunc != nil {
		return m.BlockByNumberFunc(ctx, number)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if block, ok := m.blocks[number]; ok {
		return block, nil
	}
	if number > m.head {
		return nil, nil
	}
	return CreateTestBlock(number), nil
}

// SetHead moves the chain head
func (m *MockChain) SetHead(head uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = head
}

// AddBlocks stores blocks by number
func (m *MockChain) AddBlocks(blocks ...*entities.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range blocks {
		m.blocks[b.Number] = b
	}
}

// FetchedBlocks returns the block numbers requested so far, in call order
func (m *MockChain) FetchedBlocks() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var numbers []uint64
	for _, c := range m.Calls {
		if c.Method == "BlockByNumber" {
			numbers = append(numbers, c.Args[0].(uint64))
		}
	}
	return numbers
}

var _ repositories.CheckpointRepository = (*MockCheckpointRepository)(nil)

// MockCheckpointRepository is a monotonic in-memory checkpoint store that
// records every save
type MockCheckpointRepository struct {
	mu         sync.RWMutex
	checkpoint *entities.Checkpoint
	syncHead   *entities.SyncHead

	CheckpointWrites []uint64
	SyncHeadWrites   []uint64

	// Function hooks for custom behavior
	GetCheckpointFunc  func(ctx context.Context) (*entities.Checkpoint, error)
	SaveCheckpointFunc func(ctx context.Context, block uint64) error
	GetSyncHeadFunc    func(ctx context.Context) (*entities.SyncHead, error)
	SaveSyncHeadFunc   func(ctx context.Context, block uint64) error
}

func NewMockCheckpointRepository() *MockCheckpointRepository {
	return &MockCheckpointRepository{}
}

func (m *MockCheckpointRepository) GetCheckpoint(ctx context.Context) (*entities.Checkpoint, error) {
	if m.GetCheckpointFunc != nil {
		return m.GetCheckpointFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.checkpoint == nil {
		return nil, nil
	}
	cp := *m.checkpoint
	return &cp, nil
}

func (m *MockCheckpointRepository) SaveCheckpoint(ctx context.Context, block uint64) error {
	if m.SaveCheckpointFunc != nil {
		if err := m.SaveCheckpointFunc(ctx, block); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckpointWrites = append(m.CheckpointWrites, block)
	if m.checkpoint == nil {
		m.checkpoint = &entities.Checkpoint{}
	}
	if block > m.checkpoint.LastParsedBlock {
		m.checkpoint.LastParsedBlock = block
	}
	m.checkpoint.UpdatedAt = time.Now()
	return nil
}

func (m *MockCheckpointRepository) GetSyncHead(ctx context.Context) (*entities.SyncHead, error) {
	if m.GetSyncHeadFunc != nil {
		return m.GetSyncHeadFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.syncHead == nil {
		return nil, nil
	}
	head := *m.syncHead
	return &head, nil
}

func (m *MockCheckpointRepository) SaveSyncHead(ctx context.Context, block uint64) error {
	if m.SaveSyncHeadFunc != nil {
		if err := m.SaveSyncHeadFunc(ctx, block); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncHeadWrites = append(m.SyncHeadWrites, block)
	if m.syncHead == nil {
		m.syncHead = &entities.SyncHead{}
	}
	if block > m.syncHead.LatestBlock {
		m.syncHead.LatestBlock = block
	}
	m.syncHead.UpdatedAt = time.Now()
	return nil
}

// Writes returns copies of the recorded checkpoint and sync head saves
func (m *MockCheckpointRepository) Writes() (checkpoints, syncHeads []uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uint64(nil), m.CheckpointWrites...), append([]uint64(nil), m.SyncHeadWrites...)
}

var _ repositories.LedgerRepository = (*MockLedgerRepository)(nil)

// MockLedgerRepository records block writes without applying them
type MockLedgerRepository struct {
	mu     sync.RWMutex
	writes []repositories.BlockWrite

	// Function hooks for custom behavior
	WriteBlockFunc func(ctx context.Context, write repositories.BlockWrite) error
	GetHolderFunc  func(ctx context.Context, address string) (*entities.HolderTokenBalance, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) WriteBlock(ctx context.Context, write repositories.BlockWrite) error {
	if m.WriteBlockFunc != nil {
		if err := m.WriteBlockFunc(ctx, write); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, write)
	return nil
}

func (m *MockLedgerRepository) GetHolder(ctx context.Context, address string) (*entities.HolderTokenBalance, error) {
	if m.GetHolderFunc != nil {
		return m.GetHolderFunc(ctx, address)
	}
	return nil, nil
}

// Writes returns the recorded block writes
func (m *MockLedgerRepository) Writes() []repositories.BlockWrite {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]repositories.BlockWrite(nil), m.writes...)
}

var _ repositories.TransactionRepository = (*MockTransactionRepository)(nil)

// MockTransactionRepository serves transactions from a slice
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []entities.IndexedTransaction

	// Function hooks for custom behavior
	GetByHashFunc   func(ctx context.Context, hash string) (*entities.IndexedTransaction, error)
	GetByFilterFunc func(ctx context.Context, filter entities.TransactionFilter) ([]entities.IndexedTransaction, error)

	// Call tracking
	Calls []MockCall
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make([]entities.IndexedTransaction, 0),
		Calls:        make([]MockCall, 0),
	}
}

func (m *MockTransactionRepository) GetByHash(ctx context.Context, hash string) (*entities.IndexedTransaction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByHash", Args: []interface{}{hash}})
	m.mu.Unlock()

	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, hash)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tx := range m.transactions {
		if tx.Hash == hash {
			tx := tx
			return &tx, nil
		}
	}
	return nil, nil
}

// GetByFilter matches either side and paginates in insertion order
func (m *MockTransactionRepository) GetByFilter(ctx context.Context, filter entities.TransactionFilter) ([]entities.IndexedTransaction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByFilter", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetByFilterFunc != nil {
		return m.GetByFilterFunc(ctx, filter)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.IndexedTransaction, 0)
	for _, tx := range m.transactions {
		if filter.Address != "" && tx.From != filter.Address && tx.To != filter.Address {
			continue
		}
		result = append(result, tx)
	}

	start := filter.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

// AddTransactions adds transactions to the mock repository
func (m *MockTransactionRepository) AddTransactions(txs ...entities.IndexedTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, txs...)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Error error
	Calls []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	m := &MockHealthChecker{Calls: make([]MockCall, 0)}
	m.SetHealthy(healthy)
	return m
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck"})
	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
