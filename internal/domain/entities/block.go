package entities

import (
	"math/big"
	"time"
)

// Block is a fetched block with its full transaction list
type Block struct {
	Number       uint64
	Timestamp    time.Time
	GasUsed      uint64
	Transactions []RawTransaction
}

// RawTransaction is a transaction as returned by the chain, before indexing.
// To is empty for contract creations.
type RawTransaction struct {
	Hash     string
	Nonce    uint64
	From     string
	To       string
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Input    []byte
}
