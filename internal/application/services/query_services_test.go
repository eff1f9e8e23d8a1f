package services

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/ledger"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/cache"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/memory"
	"github.com/bimakw/ledger-indexer/internal/testutil"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
	hits  int
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(data, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

type stubCaller struct {
	balance *big.Int
	err     error
}

func (s stubCaller) CallContractMethod(_ context.Context, _ string, _ abi.ABI, _ string, _ ...interface{}) ([]interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []interface{}{s.balance}, nil
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(zap.NewNop())
	action := &entities.Action{
		Type:            entities.ActionTypeTransfer,
		ContractAddress: testutil.TokenAddress,
		From:            testutil.AliceAddress,
		To:              testutil.BobAddress,
		Value:           "250",
	}
	hash := testutil.GenerateTxHash(1)
	tx := testutil.CreateIndexedTransaction(hash, 7, testutil.AliceAddress, testutil.TokenAddress)
	tx.Action = action

	err := store.WriteBlock(context.Background(), repositories.BlockWrite{
		BlockNumber:  7,
		Transactions: []entities.IndexedTransaction{tx},
		Deltas:       ledger.DeltasFor(hash, action),
	})
	require.NoError(t, err)
	return store
}

func TestHoldersService_GetHolder(t *testing.T) {
	c := newMapCache()
	svc := NewHoldersService(seededStore(t), nil, c, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.GetHolder(ctx, "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, testutil.BobAddress, resp.Data.Address)
	assert.Equal(t, []TokenBalanceDTO{{ContractAddress: testutil.TokenAddress, Balance: "250"}}, resp.Data.Balances)

	cached, err := svc.GetHolder(ctx, testutil.BobAddress)
	require.NoError(t, err)
	assert.Equal(t, resp, cached)
	assert.Equal(t, 1, c.hits)

	missing, err := svc.GetHolder(ctx, testutil.CharlieAddr)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHoldersService_GetTokenBalance(t *testing.T) {
	svc := NewHoldersService(seededStore(t), nil, nil, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.GetTokenBalance(ctx, testutil.AliceAddress, "0xDAC17F958D2EE523A2206206994597C13D831EC7")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "-250", resp.Data.Balance)

	resp, err = svc.GetTokenBalance(ctx, testutil.AliceAddress, testutil.Token2Address)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestHoldersService_GetHolder_RepoError(t *testing.T) {
	repo := testutil.NewMockLedgerRepository()
	repo.GetHolderFunc = func(ctx context.Context, address string) (*entities.HolderTokenBalance, error) {
		return nil, testutil.ErrMock
	}
	svc := NewHoldersService(repo, nil, nil, zap.NewNop())

	_, err := svc.GetHolder(context.Background(), testutil.AliceAddress)
	assert.ErrorIs(t, err, testutil.ErrMock)
}

func TestHoldersService_GetOnChainBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("compares with ledger", func(t *testing.T) {
		svc := NewHoldersService(seededStore(t), stubCaller{balance: big.NewInt(1250)}, nil, zap.NewNop())

		resp, err := svc.GetOnChainBalance(ctx, testutil.BobAddress, testutil.TokenAddress)
		require.NoError(t, err)
		assert.Equal(t, "1250", resp.Data.OnChainBalance)
		assert.Equal(t, "250", resp.Data.IndexedBalance)
	})

	t.Run("unknown holder", func(t *testing.T) {
		svc := NewHoldersService(seededStore(t), stubCaller{balance: big.NewInt(3)}, nil, zap.NewNop())

		resp, err := svc.GetOnChainBalance(ctx, testutil.CharlieAddr, testutil.TokenAddress)
		require.NoError(t, err)
		assert.Equal(t, "0", resp.Data.IndexedBalance)
	})

	t.Run("call error", func(t *testing.T) {
		svc := NewHoldersService(seededStore(t), stubCaller{err: testutil.ErrMock}, nil, zap.NewNop())

		_, err := svc.GetOnChainBalance(ctx, testutil.BobAddress, testutil.TokenAddress)
		assert.ErrorIs(t, err, testutil.ErrMock)
	})

	t.Run("no chain", func(t *testing.T) {
		svc := NewHoldersService(seededStore(t), nil, nil, zap.NewNop())

		_, err := svc.GetOnChainBalance(ctx, testutil.BobAddress, testutil.TokenAddress)
		assert.ErrorIs(t, err, ErrChainUnavailable)
	})
}

func TestTransactionService_GetTransaction(t *testing.T) {
	c := newMapCache()
	svc := NewTransactionService(seededStore(t), c, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.GetTransaction(ctx, testutil.GenerateTxHash(1))
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Data.Action)
	assert.Equal(t, "250", resp.Data.Action.Value)

	_, err = svc.GetTransaction(ctx, testutil.GenerateTxHash(1))
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)

	missing, err := svc.GetTransaction(ctx, testutil.GenerateTxHash(99))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransactionService_GetAddressTransactions(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	for i := 0; i < 5; i++ {
		repo.AddTransactions(testutil.CreateIndexedTransaction(testutil.GenerateTxHash(i), uint64(i), testutil.AliceAddress, testutil.BobAddress))
	}
	svc := NewTransactionService(repo, nil, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.GetAddressTransactions(ctx, entities.TransactionFilter{Address: testutil.AliceAddress, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Transactions, 2)
	assert.True(t, resp.HasMore)

	resp, err = svc.GetAddressTransactions(ctx, entities.TransactionFilter{Address: testutil.AliceAddress, Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, resp.Transactions, 1)
	assert.False(t, resp.HasMore)

	resp, err = svc.GetAddressTransactions(ctx, entities.TransactionFilter{Address: testutil.CharlieAddr, Limit: 5000})
	require.NoError(t, err)
	assert.NotNil(t, resp.Transactions)
	assert.Empty(t, resp.Transactions)
	assert.Equal(t, maxTransactionLimit, resp.Limit)
}

func TestStatusService_GetStatus(t *testing.T) {
	repo := testutil.NewMockCheckpointRepository()
	svc := NewStatusService(repo)
	ctx := context.Background()

	resp, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Nil(t, resp.Data.Checkpoint)
	assert.Nil(t, resp.Data.SyncHead)

	require.NoError(t, repo.SaveCheckpoint(ctx, 25))
	require.NoError(t, repo.SaveSyncHead(ctx, 27))

	resp, err = svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), *resp.Data.Checkpoint)
	assert.Equal(t, uint64(27), *resp.Data.SyncHead)

	repo.GetSyncHeadFunc = func(ctx context.Context) (*entities.SyncHead, error) {
		return nil, testutil.ErrMock
	}
	_, err = svc.GetStatus(ctx)
	assert.ErrorIs(t, err, testutil.ErrMock)
}
