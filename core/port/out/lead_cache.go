package out

import (
	"context"
	"time"
)

// ResponseCache caches serialized response payloads with a TTL.
// A miss is (false, nil), never an error.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
