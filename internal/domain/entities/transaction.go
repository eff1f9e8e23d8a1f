package entities

import (
	"time"
)

// ActionTypeTransfer is the only action type the decoder produces
const ActionTypeTransfer = "transfer"

// Action is a decoded ERC-20 transfer intent embedded in its transaction
type Action struct {
	Type            string `json:"type"`
	ContractAddress string `json:"contract_address"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"` // base-10
}

// IndexedTransaction is the durable copy of a transaction, keyed by hash
type IndexedTransaction struct {
	Hash           string    `db:"hash" json:"hash"`
	BlockNumber    uint64    `db:"block_number" json:"block_number"`
	BlockTimestamp time.Time `db:"block_timestamp" json:"block_timestamp"`
	Nonce          uint64    `db:"nonce" json:"nonce"`
	From           string    `db:"from_address" json:"from"`
	To             string    `db:"to_address" json:"to"`
	Value          string    `db:"value" json:"value"`
	Gas            uint64    `db:"gas" json:"gas"`
	GasPrice       string    `db:"gas_price" json:"gas_price"`
	Input          string    `db:"input" json:"input"`
	BlockGasUsed   uint64    `db:"block_gas_used" json:"block_gas_used"`
	Action         *Action   `db:"-" json:"action,omitempty"`
}

// TransactionFilter contains filters for listing transactions of an address
type TransactionFilter struct {
	Address string // matches either from or to
	Limit   int
	Offset  int
}

// DefaultTransactionFilter returns a filter with sensible defaults
func DefaultTransactionFilter(address string) TransactionFilter {
	return TransactionFilter{
		Address: address,
		Limit:   100,
		Offset:  0,
	}
}
