package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/cache"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/ethereum"
)

// ErrChainUnavailable is returned by on-chain queries when no node is configured
var ErrChainUnavailable = errors.New("chain client not configured")

// HoldersService serves the balance ledger built by the indexer
type HoldersService struct {
	ledgerRepo repositories.LedgerRepository
	chain      ethereum.ContractCaller
	cache      ResponseCache
	logger     *zap.Logger
}

// NewHoldersService creates a new holders service. chain may be nil, in
// which case on-chain balance lookups fail with ErrChainUnavailable.
func NewHoldersService(
	ledgerRepo repositories.LedgerRepository,
	chain ethereum.ContractCaller,
	cache ResponseCache,
	logger *zap.Logger,
) *HoldersService {
	return &HoldersService{
		ledgerRepo: ledgerRepo,
		chain:      chain,
		cache:      cache,
		logger:     logger,
	}
}

// TokenBalanceDTO is the API representation of one ledger entry
type TokenBalanceDTO struct {
	ContractAddress string `json:"contract_address"`
	Balance         string `json:"balance"`
}

// HolderDTO is the API representation of a holder's ledger
type HolderDTO struct {
	Address  string            `json:"address"`
	Balances []TokenBalanceDTO `json:"balances"`
}

// HolderResponse is the API response for holder queries
type HolderResponse struct {
	Data HolderDTO `json:"data"`
}

// TokenBalanceResponse is the API response for a single ledger entry
type TokenBalanceResponse struct {
	Data TokenBalanceDTO `json:"data"`
}

// OnChainBalanceDTO compares the indexed balance with the contract's own view
type OnChainBalanceDTO struct {
	Address         string `json:"address"`
	ContractAddress string `json:"contract_address"`
	OnChainBalance  string `json:"onchain_balance"`
	IndexedBalance  string `json:"indexed_balance"`
}

// OnChainBalanceResponse is the API response for on-chain balance queries
type OnChainBalanceResponse struct {
	Data OnChainBalanceDTO `json:"data"`
}

// GetHolder returns the full ledger of a holder, or nil if the address was never seen
func (s *HoldersService) GetHolder(ctx context.Context, address string) (*HolderResponse, error) {
	address = strings.ToLower(address)
	cacheKey := cache.HolderKey(address)

	var cached HolderResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	holder, err := s.ledgerRepo.GetHolder(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get holder: %w", err)
	}
	if holder == nil {
		return nil, nil
	}

	response := &HolderResponse{Data: toHolderDTO(holder)}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetTokenBalance returns the ledger entry of holder for contract, or nil
func (s *HoldersService) GetTokenBalance(ctx context.Context, address, contract string) (*TokenBalanceResponse, error) {
	holder, err := s.GetHolder(ctx, address)
	if err != nil || holder == nil {
		return nil, err
	}

	contract = strings.ToLower(contract)
	for _, b := range holder.Data.Balances {
		if b.ContractAddress == contract {
			return &TokenBalanceResponse{Data: b}, nil
		}
	}
	return nil, nil
}

// GetOnChainBalance calls balanceOf on the contract and reports it next to
// the indexed balance (0 when the ledger has no entry)
func (s *HoldersService) GetOnChainBalance(ctx context.Context, address, contract string) (*OnChainBalanceResponse, error) {
	if s.chain == nil {
		return nil, ErrChainUnavailable
	}

	address = strings.ToLower(address)
	contract = strings.ToLower(contract)

	onChain, err := ethereum.BalanceOf(ctx, s.chain, contract, address)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	holder, err := s.ledgerRepo.GetHolder(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get holder: %w", err)
	}

	indexed := "0"
	if entry := holder.Entry(contract); entry != nil {
		indexed = bigString(entry.Balance)
	}

	return &OnChainBalanceResponse{
		Data: OnChainBalanceDTO{
			Address:         address,
			ContractAddress: contract,
			OnChainBalance:  onChain.String(),
			IndexedBalance:  indexed,
		},
	}, nil
}

func toHolderDTO(h *entities.HolderTokenBalance) HolderDTO {
	dto := HolderDTO{
		Address:  h.Address,
		Balances: make([]TokenBalanceDTO, len(h.Balances)),
	}
	for i, b := range h.Balances {
		dto.Balances[i] = TokenBalanceDTO{
			ContractAddress: b.ContractAddress,
			Balance:         bigString(b.Balance),
		}
	}
	return dto
}
