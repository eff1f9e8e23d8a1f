package entities

import (
	"math/big"
)

// TokenBalance is one contract entry of a holder's ledger.
// Balance is signed: a holder first seen as a sender goes negative.
type TokenBalance struct {
	ContractAddress string
	Balance         *big.Int
}

// HolderTokenBalance is the per-address balance ledger.
// It holds at most one entry per contract.
type HolderTokenBalance struct {
	Address  string
	Balances []TokenBalance
}

// Entry returns the entry for contract, or nil
func (h *HolderTokenBalance) Entry(contract string) *TokenBalance {
	if h == nil {
		return nil
	}
	for i := range h.Balances {
		if h.Balances[i].ContractAddress == contract {
			return &h.Balances[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored balances
func (h *HolderTokenBalance) Clone() *HolderTokenBalance {
	if h == nil {
		return nil
	}
	out := &HolderTokenBalance{
		Address:  h.Address,
		Balances: make([]TokenBalance, len(h.Balances)),
	}
	for i, b := range h.Balances {
		out.Balances[i] = TokenBalance{
			ContractAddress: b.ContractAddress,
			Balance:         new(big.Int).Set(b.Balance),
		}
	}
	return out
}
