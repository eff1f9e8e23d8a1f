// Package ledger holds the balance-ledger merge rules shared by every store.
package ledger

import (
	"math/big"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// MergeCase reports which branch of Merge fired
type MergeCase int

const (
	// MergeCreatedHolder means the holder did not exist and was created with one entry
	MergeCreatedHolder MergeCase = iota + 1
	// MergeIncremented means the holder already had an entry for the contract
	MergeIncremented
	// MergeAppended means the holder existed without an entry for the contract
	MergeAppended
)

func (c MergeCase) String() string {
	switch c {
	case MergeCreatedHolder:
		return "created_holder"
	case MergeIncremented:
		return "incremented"
	case MergeAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// Merge applies delta to the (address, contract) entry of holder.
// holder may be nil, in which case a new ledger is returned. Otherwise
// holder is updated in place and returned. After Merge the ledger holds
// exactly one entry for contract.
func Merge(holder *entities.HolderTokenBalance, address, contract string, delta *big.Int) (*entities.HolderTokenBalance, MergeCase) {
	if holder == nil {
		return &entities.HolderTokenBalance{
			Address: address,
			Balances: []entities.TokenBalance{
				{ContractAddress: contract, Balance: new(big.Int).Set(delta)},
			},
		}, MergeCreatedHolder
	}

	if entry := holder.Entry(contract); entry != nil {
		entry.Balance = new(big.Int).Add(entry.Balance, delta)
		return holder, MergeIncremented
	}

	holder.Balances = append(holder.Balances, entities.TokenBalance{
		ContractAddress: contract,
		Balance:         new(big.Int).Set(delta),
	})
	return holder, MergeAppended
}
