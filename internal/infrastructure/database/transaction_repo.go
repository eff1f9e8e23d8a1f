package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/ledger-indexer/internal/domain/entities"
	"github.com/bimakw/ledger-indexer/internal/domain/repositories"
)

// Ensure TransactionRepo implements TransactionRepository
var _ repositories.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `hash, block_number, block_timestamp, nonce, from_address, to_address,
	value::text AS value, gas, gas_price::text AS gas_price, input, block_gas_used, action`

// TransactionRepo implements TransactionRepository using PostgreSQL
type TransactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new transaction repository
func NewTransactionRepo(db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// transactionRow adds the raw action document to the entity columns
type transactionRow struct {
	entities.IndexedTransaction
	ActionJSON []byte `db:"action"`
}

func (row *transactionRow) toEntity() (entities.IndexedTransaction, error) {
	tx := row.IndexedTransaction
	if len(row.ActionJSON) > 0 {
		var action entities.Action
		if err := json.Unmarshal(row.ActionJSON, &action); err != nil {
			return tx, fmt.Errorf("failed to decode action of %s: %w", tx.Hash, err)
		}
		tx.Action = &action
	}
	return tx, nil
}

// GetByHash retrieves a transaction by hash
func (r *TransactionRepo) GetByHash(ctx context.Context, hash string) (*entities.IndexedTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM indexed_transactions WHERE hash = $1`

	var row transactionRow
	if err := r.db.GetContext(ctx, &row, query, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	tx, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetByFilter lists transactions sent or received by an address
func (r *TransactionRepo) GetByFilter(ctx context.Context, filter entities.TransactionFilter) ([]entities.IndexedTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM indexed_transactions
		WHERE from_address = $1 OR to_address = $1
		ORDER BY block_number DESC, hash
		LIMIT $2 OFFSET $3
	`

	var rows []transactionRow
	if err := r.db.SelectContext(ctx, &rows, query, filter.Address, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	txs := make([]entities.IndexedTransaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, nil
}
