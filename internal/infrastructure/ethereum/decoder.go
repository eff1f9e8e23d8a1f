package ethereum

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

const erc20ABIJSON = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// ERC20ABI is the subset of the ERC-20 interface the indexer knows about
var ERC20ABI = mustParseABI(erc20ABIJSON)

// TransferSelector is the 4-byte selector of transfer(address,uint256): 0xa9059cbb
var TransferSelector = ERC20ABI.Methods["transfer"].ID

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// DecodeAction returns the transfer action encoded in tx's payload, or nil.
// Only transfer(address,uint256) is recognised; any payload that does not
// decode as such is simply not an action. A transaction whose sender could
// not be recovered yields nil too, so no delta is debited to an empty holder.
func DecodeAction(tx entities.RawTransaction) *entities.Action {
	if tx.From == "" || tx.To == "" || len(tx.Input) < 4 {
		return nil
	}

	method, err := ERC20ABI.MethodById(tx.Input[:4])
	if err != nil || method.Name != "transfer" {
		return nil
	}

	args, err := method.Inputs.Unpack(tx.Input[4:])
	if err != nil || len(args) != 2 {
		return nil
	}

	to, ok := args[0].(common.Address)
	if !ok {
		return nil
	}
	value, ok := args[1].(*big.Int)
	if !ok {
		return nil
	}

	return &entities.Action{
		Type:            entities.ActionTypeTransfer,
		ContractAddress: tx.To,
		From:            tx.From,
		To:              strings.ToLower(to.Hex()),
		Value:           value.String(),
	}
}
