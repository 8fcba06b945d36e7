package edgecache

import (
	"context"
	"time"
)

// Store is the cache facility behind the middleware.  Match returns
// (nil, nil) on a miss.  A ttl of zero means "no expiry".
type Store interface {
	Match(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, e *Entry, ttl time.Duration) error
	PurgeTags(ctx context.Context, tags []string) (int, error)
	PurgeKeys(ctx context.Context, keys []string) (int, error)
}
