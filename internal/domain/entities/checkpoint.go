package entities

import (
	"time"
)

// Checkpoint tracks how far the historical backfill has progressed.
// LastParsedBlock only ever moves forward.
type Checkpoint struct {
	LastParsedBlock uint64    `db:"last_parsed_block"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// SyncHead tracks the highest block covered by the tail sync
type SyncHead struct {
	LatestBlock uint64    `db:"latest_block"`
	UpdatedAt   time.Time `db:"updated_at"`
}
