// Package cache provides the key-value store the calendar client keeps
// its offline state in. The browser original leaned on localStorage as
// an ambient singleton; here the store is injected so backends can be
// swapped (memory, file, redis) and faked in tests.
package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
