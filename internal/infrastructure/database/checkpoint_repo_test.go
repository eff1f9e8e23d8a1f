package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCheckpointRepo_GetCheckpoint(t *testing.T) {
	ctx := context.Background()
	selectQuery := regexp.QuoteMeta(`SELECT block_number, updated_at FROM indexer_checkpoints WHERE name = $1`)

	t.Run("returns stored checkpoint", func(t *testing.T) {
		db, mock := newMockDB(t)
		updated := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		mock.ExpectQuery(selectQuery).
			WithArgs("backfill").
			WillReturnRows(sqlmock.NewRows([]string{"block_number", "updated_at"}).AddRow(int64(19), updated))

		cp, err := NewCheckpointRepo(db).GetCheckpoint(ctx)
		require.NoError(t, err)
		require.NotNil(t, cp)
		assert.Equal(t, uint64(19), cp.LastParsedBlock)
		assert.True(t, cp.UpdatedAt.Equal(updated))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when absent", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).
			WithArgs("backfill").
			WillReturnRows(sqlmock.NewRows([]string{"block_number", "updated_at"}))

		cp, err := NewCheckpointRepo(db).GetCheckpoint(ctx)
		require.NoError(t, err)
		assert.Nil(t, cp)
	})

	t.Run("wraps query errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs("backfill").WillReturnError(errors.New("connection reset"))

		_, err := NewCheckpointRepo(db).GetCheckpoint(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestCheckpointRepo_SyncHead(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO indexer_checkpoints (name, block_number)")).
		WithArgs("sync_head", int64(27)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT block_number, updated_at FROM indexer_checkpoints")).
		WithArgs("sync_head").
		WillReturnRows(sqlmock.NewRows([]string{"block_number", "updated_at"}).AddRow(int64(27), time.Now()))

	repo := NewCheckpointRepo(db)
	require.NoError(t, repo.SaveSyncHead(ctx, 27))

	head, err := repo.GetSyncHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(27), head.LatestBlock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckpointRepo_SaveIsMonotonic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("block_number = GREATEST(indexer_checkpoints.block_number, EXCLUDED.block_number)")).
		WithArgs("backfill", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewCheckpointRepo(db).SaveCheckpoint(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
