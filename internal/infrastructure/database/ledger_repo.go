package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/ledger"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// Ensure LedgerRepo implements LedgerRepository
var _ repositories.LedgerRepository = (*LedgerRepo)(nil)

const upsertTransactionQuery = `
	INSERT INTO indexed_transactions (hash, block_number, block_timestamp, nonce,
		from_address, to_address, value, gas, gas_price, input, block_gas_used, action)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (hash) DO UPDATE SET
		block_number = EXCLUDED.block_number,
		block_timestamp = EXCLUDED.block_timestamp,
		nonce = EXCLUDED.nonce,
		from_address = EXCLUDED.from_address,
		to_address = EXCLUDED.to_address,
		value = EXCLUDED.value,
		gas = EXCLUDED.gas,
		gas_price = EXCLUDED.gas_price,
		input = EXCLUDED.input,
		block_gas_used = EXCLUDED.block_gas_used,
		action = EXCLUDED.action,
		updated_at = NOW()
`

// The delta identity row and the balance increment are one statement, so
// a delta is either fully applied or not at all. Creating the holder entry
// and appending a new contract entry are both the INSERT branch; an
// existing (holder, contract) entry takes the increment branch.
const applyDeltaQuery = `
	WITH applied AS (
		INSERT INTO applied_balance_deltas (tx_hash, side, holder_address, contract_address, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tx_hash, side) DO NOTHING
		RETURNING holder_address, contract_address, amount
	)
	INSERT INTO holder_token_balances (holder_address, contract_address, balance)
	SELECT holder_address, contract_address, amount FROM applied
	ON CONFLICT (holder_address, contract_address) DO UPDATE SET
		balance = holder_token_balances.balance + EXCLUDED.balance,
		updated_at = NOW()
`

// LedgerRepo implements LedgerRepository using PostgreSQL
type LedgerRepo struct {
	db *sqlx.DB
}

// NewLedgerRepo creates a new ledger repository
func NewLedgerRepo(db *sqlx.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// WriteBlock upserts every transaction and applies every delta of one block
func (r *LedgerRepo) WriteBlock(ctx context.Context, write repositories.BlockWrite) error {
	var errs []error

	for i := range write.Transactions {
		if err := r.upsertTransaction(ctx, &write.Transactions[i]); err != nil {
			errs = append(errs, err)
		}
	}

	for _, d := range write.Deltas {
		if err := r.applyDelta(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *LedgerRepo) upsertTransaction(ctx context.Context, tx *entities.IndexedTransaction) error {
	var action []byte
	if tx.Action != nil {
		encoded, err := json.Marshal(tx.Action)
		if err != nil {
			return fmt.Errorf("failed to encode action of %s: %w", tx.Hash, err)
		}
		action = encoded
	}

	_, err := r.db.ExecContext(ctx, upsertTransactionQuery,
		tx.Hash,
		int64(tx.BlockNumber),
		tx.BlockTimestamp,
		int64(tx.Nonce),
		tx.From,
		tx.To,
		tx.Value,
		int64(tx.Gas),
		tx.GasPrice,
		tx.Input,
		int64(tx.BlockGasUsed),
		nullableJSON(action),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", tx.Hash, err)
	}

	return nil
}

func (r *LedgerRepo) applyDelta(ctx context.Context, d ledger.Delta) error {
	_, err := r.db.ExecContext(ctx, applyDeltaQuery,
		d.TxHash,
		string(d.Side),
		d.Holder,
		d.Contract,
		d.Amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to apply %s delta of %s to %s: %w", d.Side, d.TxHash, d.Holder, err)
	}

	return nil
}

// balanceRow holds one (holder, contract) entry
type balanceRow struct {
	ContractAddress string `db:"contract_address"`
	Balance         string `db:"balance"`
}

// GetHolder returns the balance ledger of a holder
func (r *LedgerRepo) GetHolder(ctx context.Context, address string) (*entities.HolderTokenBalance, error) {
	query := `
		SELECT contract_address, balance::text AS balance
		FROM holder_token_balances
		WHERE holder_address = $1
		ORDER BY contract_address
	`

	var rows []balanceRow
	if err := r.db.SelectContext(ctx, &rows, query, address); err != nil {
		return nil, fmt.Errorf("failed to get holder balances: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	holder := &entities.HolderTokenBalance{
		Address:  address,
		Balances: make([]entities.TokenBalance, 0, len(rows)),
	}
	for _, row := range rows {
		balance, ok := new(big.Int).SetString(row.Balance, 10)
		if !ok {
			return nil, fmt.Errorf("invalid balance %q for %s/%s", row.Balance, address, row.ContractAddress)
		}
		holder.Balances = append(holder.Balances, entities.TokenBalance{
			ContractAddress: row.ContractAddress,
			Balance:         balance,
		})
	}

	return holder, nil
}

// nullableJSON maps an absent document to SQL NULL
func nullableJSON(doc []byte) interface{} {
	if doc == nil {
		return nil
	}
	return string(doc)
}
