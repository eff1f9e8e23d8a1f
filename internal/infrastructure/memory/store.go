// Package memory is a process-local store for development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/ledger"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

var (
	_ repositories.CheckpointRepository  = (*Store)(nil)
	_ repositories.LedgerRepository      = (*Store)(nil)
	_ repositories.TransactionRepository = (*Store)(nil)
)

type deltaKey struct {
	txHash string
	side   ledger.Side
}

// Store keeps every collection in maps behind one mutex, so each merge is
// atomic with respect to concurrent block writers.
type Store struct {
	mu           sync.RWMutex
	checkpoint   *entities.Checkpoint
	syncHead     *entities.SyncHead
	transactions map[string]entities.IndexedTransaction
	holders      map[string]*entities.HolderTokenBalance
	applied      map[deltaKey]struct{}

	logger *zap.Logger
}

// NewStore creates an empty store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		transactions: make(map[string]entities.IndexedTransaction),
		holders:      make(map[string]*entities.HolderTokenBalance),
		applied:      make(map[deltaKey]struct{}),
		logger:       logger,
	}
}

// GetCheckpoint returns the backfill checkpoint
func (s *Store) GetCheckpoint(_ context.Context) (*entities.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.checkpoint == nil {
		return nil, nil
	}
	cp := *s.checkpoint
	return &cp, nil
}

// SaveCheckpoint creates or advances the backfill checkpoint
func (s *Store) SaveCheckpoint(_ context.Context, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkpoint == nil {
		s.checkpoint = &entities.Checkpoint{}
	}
	if block > s.checkpoint.LastParsedBlock {
		s.checkpoint.LastParsedBlock = block
	}
	s.checkpoint.UpdatedAt = time.Now()
	return nil
}

// GetSyncHead returns the tail-sync head
func (s *Store) GetSyncHead(_ context.Context) (*entities.SyncHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.syncHead == nil {
		return nil, nil
	}
	head := *s.syncHead
	return &head, nil
}

// SaveSyncHead creates or advances the tail-sync head
func (s *Store) SaveSyncHead(_ context.Context, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncHead == nil {
		s.syncHead = &entities.SyncHead{}
	}
	if block > s.syncHead.LatestBlock {
		s.syncHead.LatestBlock = block
	}
	s.syncHead.UpdatedAt = time.Now()
	return nil
}

// WriteBlock replaces transactions by hash and merges every delta not applied before
func (s *Store) WriteBlock(_ context.Context, write repositories.BlockWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range write.Transactions {
		if tx.Action != nil {
			action := *tx.Action
			tx.Action = &action
		}
		s.transactions[tx.Hash] = tx
	}

	for _, d := range write.Deltas {
		key := deltaKey{txHash: d.TxHash, side: d.Side}
		if _, done := s.applied[key]; done {
			continue
		}

		holder, mc := ledger.Merge(s.holders[d.Holder], d.Holder, d.Contract, d.Amount)
		s.holders[d.Holder] = holder
		s.applied[key] = struct{}{}

		s.logger.Debug("Merged balance delta",
			zap.String("tx_hash", d.TxHash),
			zap.String("holder", d.Holder),
			zap.String("contract", d.Contract),
			zap.String("delta", d.Amount.String()),
			zap.Stringer("case", mc),
		)
	}

	return nil
}

// GetHolder returns a copy of the holder's ledger
func (s *Store) GetHolder(_ context.Context, address string) (*entities.HolderTokenBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holders[address].Clone(), nil
}

// GetByHash retrieves a transaction by hash
func (s *Store) GetByHash(_ context.Context, hash string) (*entities.IndexedTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[hash]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

// GetByFilter lists transactions sent or received by an address, newest first
func (s *Store) GetByFilter(_ context.Context, filter entities.TransactionFilter) ([]entities.IndexedTransaction, error) {
	s.mu.RLock()
	matched := make([]entities.IndexedTransaction, 0)
	for _, tx := range s.transactions {
		if tx.From == filter.Address || tx.To == filter.Address {
			matched = append(matched, tx)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].BlockNumber != matched[j].BlockNumber {
			return matched[i].BlockNumber > matched[j].BlockNumber
		}
		return matched[i].Hash < matched[j].Hash
	})

	if filter.Offset >= len(matched) {
		return []entities.IndexedTransaction{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

// TransactionCount returns the number of indexed transactions
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// Holders returns a copy of every holder ledger keyed by address
func (s *Store) Holders() map[string]*entities.HolderTokenBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*entities.HolderTokenBalance, len(s.holders))
	for addr, h := range s.holders {
		out[addr] = h.Clone()
	}
	return out
}

// Transactions returns a copy of every indexed transaction keyed by hash
func (s *Store) Transactions() map[string]entities.IndexedTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entities.IndexedTransaction, len(s.transactions))
	for hash, tx := range s.transactions {
		out[hash] = tx
	}
	return out
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}
