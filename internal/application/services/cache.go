package services

import (
	"context"
)

// ResponseCache is the read-through cache used by the query services.
// A nil ResponseCache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}
