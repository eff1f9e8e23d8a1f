package ledger

import (
	"math/big"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// Side identifies which half of a transfer a delta belongs to
type Side string

const (
	// SideDebit is the sender's half of a transfer
	SideDebit Side = "debit"
	// SideCredit is the recipient's half of a transfer
	SideCredit Side = "credit"
)

// Delta is one signed balance change. (TxHash, Side) is its identity:
// stores apply each identity at most once.
type Delta struct {
	TxHash   string
	Side     Side
	Holder   string
	Contract string
	Amount   *big.Int
}

// DeltasFor returns the sender debit and the recipient credit for action.
// It returns nil when there is no action or its value is not a base-10 integer.
func DeltasFor(txHash string, action *entities.Action) []Delta {
	if action == nil || action.Type != entities.ActionTypeTransfer {
		return nil
	}

	value, ok := new(big.Int).SetString(action.Value, 10)
	if !ok {
		return nil
	}

	return []Delta{
		{
			TxHash:   txHash,
			Side:     SideDebit,
			Holder:   action.From,
			Contract: action.ContractAddress,
			Amount:   new(big.Int).Neg(value),
		},
		{
			TxHash:   txHash,
			Side:     SideCredit,
			Holder:   action.To,
			Contract: action.ContractAddress,
			Amount:   value,
		},
	}
}
