// Package persistence sits between the preference store and the
// durable key-value backend: it debounces writes, caches reads with a
// TTL and retries failed writes with bounded exponential backoff. It is
// the only component that talks to the backend.
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get for missing keys.
var ErrNotFound = errors.New("persistence: key not found")

// Backend is the durable key-value contract. Implementations live in
// the subpackages (memory, mongodb, redis, badgerdb) and are selected
// at wiring time.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close(ctx context.Context) error
}
