package reqctx

import (
	"strings"
	"sync"
)

// TagSet is an insertion-ordered set of cache tags.  Rendering code adds
// tags while the edge-cache fill reads them, so access is locked.
type TagSet struct {
	mu    sync.Mutex
	order []string
	seen  map[string]struct{}
}

// NewTagSet returns an empty set.
func NewTagSet() *TagSet {
	return &TagSet{seen: make(map[string]struct{})}
}

// Add inserts tags, trimming blanks and skipping empties and duplicates.
func (s *TagSet) Add(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := s.seen[t]; dup {
			continue
		}
		s.seen[t] = struct{}{}
		s.order = append(s.order, t)
	}
}

// List returns a copy in insertion order.
func (s *TagSet) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Len reports the number of distinct tags.
func (s *TagSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
