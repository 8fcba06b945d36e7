// internal/cache/lru.go
//
// Small typed LRU used by the in-process edge-cache store.  Not safe for
// concurrent use; the owner holds its own lock.  Good for a few thousand
// entries.
package cache

import "container/list"

// LRU is a least-recently-used cache with an optional eviction hook.
type LRU[K comparable, V any] struct {
	cap  int
	ll   *list.List
	dict map[K]*list.Element

	// OnEvict runs for entries pushed out by capacity, not for Remove.
	OnEvict func(key K, val V)
}

type pair[K comparable, V any] struct {
	key K
	val V
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU[K, V]{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[K]*list.Element, capacity),
	}
}

// Get retrieves a value and marks it MRU.
func (c *LRU[K, V]) Get(key K) (val V, ok bool) {
	if ele, hit := c.dict[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(pair[K, V]).val, true
	}
	return val, false
}

// Add inserts or updates a value.
func (c *LRU[K, V]) Add(key K, val V) {
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair[K, V]{key, val}
		c.ll.MoveToFront(ele)
		return
	}
	ele := c.ll.PushFront(pair[K, V]{key, val})
	c.dict[key] = ele
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		p := last.Value.(pair[K, V])
		delete(c.dict, p.key)
		if c.OnEvict != nil {
			c.OnEvict(p.key, p.val)
		}
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) (val V, ok bool) {
	ele, hit := c.dict[key]
	if !hit {
		return val, false
	}
	c.ll.Remove(ele)
	delete(c.dict, key)
	return ele.Value.(pair[K, V]).val, true
}

// Len reports current size.
func (c *LRU[K, V]) Len() int { return c.ll.Len() }
