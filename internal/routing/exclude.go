// internal/routing/exclude.go
//
// Path exclusion matcher.
//
// Context
// -------
// Static assets, image and API endpoints, the CMS studio, and well-known
// files never carry a locale prefix, never get a region cookie, and are
// never edge-cached.  A small allow-list (`/api/og`) is carved back out:
// those paths are treated like pages.
//
// A prefix matches the path itself and anything below it, so "/api"
// matches "/api" and "/api/health" but not "/apis".
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package routing

import "strings"

// Matcher decides whether a path bypasses locale, region, and cache.
type Matcher struct {
	excluded  []string
	cacheable []string
}

// NewMatcher copies both lists.
func NewMatcher(excluded, cacheable []string) *Matcher {
	return &Matcher{
		excluded:  append([]string(nil), excluded...),
		cacheable: append([]string(nil), cacheable...),
	}
}

// Excluded reports whether p is on the exclusion list and not carved out.
func (m *Matcher) Excluded(p string) bool {
	if underAny(p, m.cacheable) {
		return false
	}
	return underAny(p, m.excluded)
}

func underAny(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		if p == pre || strings.HasPrefix(p, pre+"/") {
			return true
		}
	}
	return false
}
