// Package cache stores exported conversion results.
//
// The converter itself never reads the cache. The CLI and the server key a
// result by the document content hash plus every option that changes the
// output, so a hit can be written back verbatim.
//
// Three backends are provided:
//
//   - [FileCache] keeps entries as JSON files on a billy filesystem,
//     normally the user cache directory.
//   - [RedisCache] shares entries between server replicas.
//   - [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Clear removes all entries from c. Backends without Clearer report zero.
func Clear(ctx context.Context, c Cache) (int, error) {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}

// Stats summarizes a backend's contents.
type Stats struct {
	Entries int
	Bytes   int64
}

// Statter is implemented by backends that can report Stats.
type Statter interface {
	Stats(ctx context.Context) (Stats, error)
}
