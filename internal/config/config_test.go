package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, 10, cfg.Indexer.BatchSize)
	assert.Equal(t, "*/15 * * * * *", cfg.Indexer.TailSchedule)
	assert.Equal(t, StorePostgres, cfg.Indexer.Store)
	assert.Equal(t, 15*time.Second, cfg.API.CacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "http://node:8545")
	t.Setenv("INDEXER_BATCH_SIZE", "25")
	t.Setenv("INDEXER_STORE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://node:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, 25, cfg.Indexer.BatchSize)
	assert.Equal(t, StoreMemory, cfg.Indexer.Store)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero batch size", "INDEXER_BATCH_SIZE", "0"},
		{"negative workers", "INDEXER_WORKER_COUNT", "-1"},
		{"unknown store", "INDEXER_STORE", "mongo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		Name:     "ledger",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ledger sslmode=disable", cfg.DSN())
}
