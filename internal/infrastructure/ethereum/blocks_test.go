package ethereum

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertBlock(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())

	chainID := big.NewInt(1337)
	signer := types.LatestSignerForChainID(chainID)

	to := common.HexToAddress("0xDAC17F958D2EE523A2206206994597C13D831EC7")
	input := common.FromHex("0xa9059cbb")

	call, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    7,
		To:       &to,
		Value:    big.NewInt(5),
		Gas:      21000,
		GasPrice: big.NewInt(2),
		Data:     input,
	}), signer, key)
	require.NoError(t, err)

	create, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    8,
		Gas:      100000,
		GasPrice: big.NewInt(2),
	}), signer, key)
	require.NoError(t, err)

	block, failed := ConvertBlock(12, 1700000000, 42000, types.Transactions{call, create}, signer)
	assert.Empty(t, failed)

	assert.Equal(t, uint64(12), block.Number)
	assert.Equal(t, int64(1700000000), block.Timestamp.Unix())
	assert.Equal(t, uint64(42000), block.GasUsed)
	require.Len(t, block.Transactions, 2)

	first := block.Transactions[0]
	assert.Equal(t, call.Hash().Hex(), first.Hash)
	assert.Equal(t, sender, first.From)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", first.To)
	assert.Equal(t, uint64(7), first.Nonce)
	assert.Equal(t, "5", first.Value.String())
	assert.Equal(t, "2", first.GasPrice.String())
	assert.Equal(t, uint64(21000), first.Gas)
	assert.Equal(t, input, first.Input)

	assert.Empty(t, block.Transactions[1].To)
}

func TestConvertBlock_UnrecoverableSender(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	unsigned := types.NewTx(&types.LegacyTx{To: &to, Gas: 21000, GasPrice: big.NewInt(1)})

	block, failed := ConvertBlock(1, 0, 0, types.Transactions{unsigned}, types.LatestSignerForChainID(big.NewInt(1)))

	require.Len(t, block.Transactions, 1)
	assert.Empty(t, block.Transactions[0].From)
	assert.Equal(t, []string{unsigned.Hash().Hex()}, failed)
}

func TestEncodeInput(t *testing.T) {
	assert.Equal(t, "0x", EncodeInput(nil))
	assert.Equal(t, "0xa9059cbb", EncodeInput(common.FromHex("0xa9059cbb")))
}
