// internal/edgecache/memory.go
//
// In-process Store.  Backs development and single-instance deployments
// where Redis is not configured.  Bounded by an LRU, expires entries on
// read, and keeps a tag index for purges.

package edgecache

import (
	"context"
	"sync"
	"time"

	"github.com/yanizio/storefront/internal/cache"
)

type memItem struct {
	entry   *Entry
	expires time.Time // zero = never
	tags    []string
}

// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	lru   *cache.LRU[string, memItem]
	byTag map[string]map[string]struct{}
	now   func() time.Time
}

// NewMemoryStore holds at most entries responses.
func NewMemoryStore(entries int) *MemoryStore {
	if entries < 1 {
		entries = 1
	}
	s := &MemoryStore{
		lru:   cache.New[string, memItem](entries),
		byTag: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
	s.lru.OnEvict = func(key string, it memItem) { s.unindex(key, it.tags) }
	return s
}

// Match implements Store.
func (s *MemoryStore) Match(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if !it.expires.IsZero() && s.now().After(it.expires) {
		s.removeLocked(key)
		return nil, nil
	}
	return it.entry, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, e *Entry, ttl time.Duration) error {
	it := memItem{entry: e, tags: e.Tags()}
	if ttl > 0 {
		it.expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
	s.lru.Add(key, it)
	for _, t := range it.tags {
		keys, ok := s.byTag[t]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

// PurgeTags implements Store.
func (s *MemoryStore) PurgeTags(_ context.Context, tags []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range tags {
		for key := range s.byTag[t] {
			if s.removeLocked(key) {
				n++
			}
		}
	}
	return n, nil
}

// PurgeKeys implements Store.
func (s *MemoryStore) PurgeKeys(_ context.Context, keys []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, key := range keys {
		if s.removeLocked(key) {
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

func (s *MemoryStore) removeLocked(key string) bool {
	it, ok := s.lru.Remove(key)
	if ok {
		s.unindex(key, it.tags)
	}
	return ok
}

func (s *MemoryStore) unindex(key string, tags []string) {
	for _, t := range tags {
		if keys, ok := s.byTag[t]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, t)
			}
		}
	}
}
