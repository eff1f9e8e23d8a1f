package testutil

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/infrastructure/ethereum"
)

// Common test addresses
const (
	TokenAddress  = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	Token2Address = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	AliceAddress  = "0x1111111111111111111111111111111111111111"
	BobAddress    = "0x2222222222222222222222222222222222222222"
	CharlieAddr   = "0x3333333333333333333333333333333333333333"
)

var genesisTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// CreateTestBlock creates a block with the given transactions
func CreateTestBlock(number uint64, txs ...entities.RawTransaction) *entities.Block {
	return &entities.Block{
		Number:       number,
		Timestamp:    genesisTime.Add(time.Duration(number) * 12 * time.Second),
		GasUsed:      21000 * uint64(len(txs)),
		Transactions: txs,
	}
}

// CreateTestTransaction creates a plain value transfer between two accounts
func CreateTestTransaction(opts ...TransactionOption) entities.RawTransaction {
	tx := entities.RawTransaction{
		Hash:     GenerateTxHash(0),
		Nonce:    0,
		From:     AliceAddress,
		To:       BobAddress,
		Value:    big.NewInt(1000),
		Gas:      21000,
		GasPrice: big.NewInt(1_000_000_000),
	}

	for _, opt := range opts {
		opt(&tx)
	}

	return tx
}

// CreateTokenTransfer creates a call of transfer(to, value) on contract sent by from
func CreateTokenTransfer(hash, contract, from, to string, value *big.Int) entities.RawTransaction {
	input, err := ethereum.ERC20ABI.Pack("transfer", common.HexToAddress(to), value)
	if err != nil {
		panic(fmt.Sprintf("pack transfer: %v", err))
	}

	return CreateTestTransaction(
		WithHash(hash),
		WithFrom(from),
		WithTo(contract),
		WithValue(big.NewInt(0)),
		WithInput(input),
	)
}

type TransactionOption func(*entities.RawTransaction)

func WithHash(hash string) TransactionOption {
	return func(tx *entities.RawTransaction) {
		tx.Hash = hash
	}
}

func WithNonce(nonce uint64) TransactionOption {
	return func(tx *entities.RawTransaction) {
		tx.Nonce = nonce
	}
}

func WithFrom(addr string) TransactionOption {
	return func(tx *entities.RawTransaction) {
		tx.From = addr
	}
}

func WithTo(addr string) TransactionOption {
	return func(tx *entities.RawTransaction) {
		tx.To = addr
	}
}

func WithValue(val *big.Int) TransactionOption {
	return func(tx *entities.RawTransaction) {
		tx.Value = val
	}
}

func WithInput(input []byte) TransactionOption {
	return func(tx *entities.RawTransaction) {
		tx.Input = input
	}
}

// CreateIndexedTransaction creates an indexed transaction with default values
func CreateIndexedTransaction(hash string, block uint64, from, to string) entities.IndexedTransaction {
	return entities.IndexedTransaction{
		Hash:           hash,
		BlockNumber:    block,
		BlockTimestamp: genesisTime.Add(time.Duration(block) * 12 * time.Second),
		From:           from,
		To:             to,
		Value:          "1000",
		Gas:            21000,
		GasPrice:       "1000000000",
		Input:          "0x",
		BlockGasUsed:   21000,
	}
}

// GenerateTxHash returns a unique, well-formed tx hash for index
func GenerateTxHash(index int) string {
	return fmt.Sprintf("0x%064x", index+1)
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
