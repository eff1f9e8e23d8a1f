package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/config"
	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// Client wraps the Ethereum client. The endpoint can be swapped at runtime
// with SetNetwork, which closes the previous connection.
type Client struct {
	mu      sync.RWMutex
	client  *ethclient.Client
	rpcURL  string
	chainID *big.Int
	signer  types.Signer

	config config.EthereumConfig
	logger *zap.Logger
}

// NewClient creates a new Ethereum client
func NewClient(ctx context.Context, cfg config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{
		config: cfg,
		logger: logger,
	}
	if err := c.SetNetwork(ctx, cfg.RPCURL); err != nil {
		return nil, err
	}
	return c, nil
}

// SetNetwork dials rpcURL and, once the node answers, makes it the active endpoint
func (c *Client) SetNetwork(ctx context.Context, rpcURL string) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	if c.config.ChainID != 0 && chainID.Int64() != c.config.ChainID {
		client.Close()
		return fmt.Errorf("chain ID mismatch: expected %d, got %d", c.config.ChainID, chainID.Int64())
	}

	c.mu.Lock()
	previous := c.client
	c.client = client
	c.rpcURL = rpcURL
	c.chainID = chainID
	c.signer = types.LatestSignerForChainID(chainID)
	c.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	c.logger.Info("Connected to Ethereum node",
		zap.String("rpc_url", rpcURL),
		zap.Int64("chain_id", chainID.Int64()),
	)

	return nil
}

// Close closes the Ethereum client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

// RPCURL returns the active endpoint
func (c *Client) RPCURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rpcURL
}

// ChainID returns the chain ID of the active endpoint
func (c *Client) ChainID() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainID
}

func (c *Client) current() (*ethclient.Client, types.Signer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, nil, errors.New("ethereum client is closed")
	}
	return c.client, c.signer, nil
}

// HeadHeight returns the latest block number
func (c *Client) HeadHeight(ctx context.Context) (uint64, error) {
	client, _, err := c.current()
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	return head, nil
}

// BlockByNumber returns the block with its transactions, or nil if the
// chain has no block at that height
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*entities.Block, error) {
	client, signer, err := c.current()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	block, err := client.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get block %d: %w", number, err)
	}

	converted, failed := ConvertBlock(block.NumberU64(), block.Time(), block.GasUsed(), block.Transactions(), signer)
	if len(failed) > 0 {
		c.logger.Warn("Failed to recover sender for some transactions",
			zap.Uint64("block", number),
			zap.Strings("tx_hashes", failed),
		)
	}
	return converted, nil
}

// CallContractMethod packs method(args...) with contractABI, runs it as an
// eth_call against the latest block and returns the unpacked outputs
func (c *Client) CallContractMethod(ctx context.Context, contract string, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	client, _, err := c.current()
	if err != nil {
		return nil, err
	}

	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	to := common.HexToAddress(contract)

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	output, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s on %s failed: %w", method, contract, err)
	}

	result, err := contractABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return result, nil
}
