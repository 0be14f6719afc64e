// Package cache provides the validation caches shared by the certificate and
// token authentication paths.
package cache

import (
	"context"
	"time"
)

// ValidationCache is a process-wide key/value memo with per-entry TTL.
//
// Implementations must make Set and Delete atomic per key: a concurrent
// reader observes either the previous entry or the new one, never a partial
// entry. Delete is used for write-through invalidation, so it must take
// effect before it returns.
type ValidationCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
