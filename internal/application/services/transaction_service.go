package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/cache"
)

const maxTransactionLimit = 1000

// TransactionService provides business logic for transaction queries
type TransactionService struct {
	txRepo repositories.TransactionRepository
	cache  ResponseCache
	logger *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txRepo repositories.TransactionRepository, cache ResponseCache, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo: txRepo,
		cache:  cache,
		logger: logger,
	}
}

// TransactionResponse is the API response for a single transaction
type TransactionResponse struct {
	Data entities.IndexedTransaction `json:"data"`
}

// TransactionListResponse is the API response for an address' transactions
type TransactionListResponse struct {
	Transactions []entities.IndexedTransaction `json:"transactions"`
	Limit        int                           `json:"limit"`
	Offset       int                           `json:"offset"`
	HasMore      bool                          `json:"has_more"`
}

// GetTransaction returns an indexed transaction, or nil if unknown
func (s *TransactionService) GetTransaction(ctx context.Context, hash string) (*TransactionResponse, error) {
	hash = strings.ToLower(hash)
	cacheKey := cache.TransactionKey(hash)

	var cached TransactionResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	tx, err := s.txRepo.GetByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, nil
	}

	response := &TransactionResponse{Data: *tx}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetAddressTransactions lists transactions sent or received by an address, newest first
func (s *TransactionService) GetAddressTransactions(ctx context.Context, filter entities.TransactionFilter) (*TransactionListResponse, error) {
	filter.Address = strings.ToLower(filter.Address)
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > maxTransactionLimit {
		filter.Limit = maxTransactionLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	cacheKey := cache.AddressTransactionsKey(filter.Address, filter.Limit, filter.Offset)

	var cached TransactionListResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	// Fetch one extra row to know whether another page exists
	query := filter
	query.Limit++
	txs, err := s.txRepo.GetByFilter(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	hasMore := len(txs) > filter.Limit
	if hasMore {
		txs = txs[:filter.Limit]
	}
	if txs == nil {
		txs = []entities.IndexedTransaction{}
	}

	response := &TransactionListResponse{
		Transactions: txs,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
		HasMore:      hasMore,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}
