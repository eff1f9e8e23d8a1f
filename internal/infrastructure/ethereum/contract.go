package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller runs read-only contract methods
type ContractCaller interface {
	CallContractMethod(ctx context.Context, contract string, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// BalanceOf queries the on-chain ERC-20 balance of holder
func BalanceOf(ctx context.Context, caller ContractCaller, contract, holder string) (*big.Int, error) {
	out, err := caller.CallContractMethod(ctx, contract, ERC20ABI, "balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, err
	}

	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf result length: %d", len(out))
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}
	return balance, nil
}
