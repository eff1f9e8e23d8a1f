package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	out  []interface{}
	err  error
	args []interface{}
}

func (f *fakeCaller) CallContractMethod(_ context.Context, _ string, _ abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	f.args = append([]interface{}{method}, args...)
	return f.out, f.err
}

func TestBalanceOf(t *testing.T) {
	caller := &fakeCaller{out: []interface{}{big.NewInt(99)}}

	balance, err := BalanceOf(context.Background(), caller, tokenAddr, senderA)
	require.NoError(t, err)

	assert.Equal(t, "99", balance.String())
	assert.Equal(t, []interface{}{"balanceOf", common.HexToAddress(senderA)}, caller.args)
}

func TestBalanceOf_Errors(t *testing.T) {
	tests := []struct {
		name   string
		caller *fakeCaller
	}{
		{"call fails", &fakeCaller{err: errors.New("rpc down")}},
		{"empty result", &fakeCaller{out: []interface{}{}}},
		{"wrong type", &fakeCaller{out: []interface{}{"99"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BalanceOf(context.Background(), tt.caller, tokenAddr, senderA)
			assert.Error(t, err)
		})
	}
}
