package ethereum

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// ConvertBlock turns go-ethereum transactions into chain-agnostic raw
// transactions. Addresses are lower-cased. Hashes of transactions whose
// sender could not be recovered are returned in failed; those
// transactions are kept with an empty sender.
func ConvertBlock(number, timestamp, gasUsed uint64, txs types.Transactions, signer types.Signer) (*entities.Block, []string) {
	block := &entities.Block{
		Number:       number,
		Timestamp:    time.Unix(int64(timestamp), 0).UTC(),
		GasUsed:      gasUsed,
		Transactions: make([]entities.RawTransaction, 0, len(txs)),
	}

	var failed []string
	for _, tx := range txs {
		raw := entities.RawTransaction{
			Hash:     tx.Hash().Hex(),
			Nonce:    tx.Nonce(),
			Value:    new(big.Int).Set(tx.Value()),
			Gas:      tx.Gas(),
			GasPrice: new(big.Int).Set(tx.GasPrice()),
			Input:    tx.Data(),
		}

		if tx.To() != nil {
			raw.To = strings.ToLower(tx.To().Hex())
		}

		from, err := types.Sender(signer, tx)
		if err != nil {
			failed = append(failed, raw.Hash)
		} else {
			raw.From = strings.ToLower(from.Hex())
		}

		block.Transactions = append(block.Transactions, raw)
	}

	return block, failed
}

// EncodeInput renders a payload the way it is stored: 0x-prefixed hex
func EncodeInput(input []byte) string {
	return hexutil.Encode(input)
}
