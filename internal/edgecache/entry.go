// internal/edgecache/entry.go
//
// Cached response representation and the Cache-Control / Cache-Tag helpers
// shared by the middleware and both stores.
//
// Context
// -------
// An Entry is a full captured response: status, headers, and body bytes.
// Headers are stored after the deferred fill has normalised them, so a hit
// replays exactly what was stored: no Set-Cookie, a Cache-Control that is
// always present, and the merged Cache-Tag list.
//
// Notes
// -----
// • Entries are JSON-encoded by the Redis store; field names are part of
//   the stored format, change them together with the build version.
// • Oxford commas, two spaces after periods.

package edgecache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Entry is one stored response.
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Tags returns the entry's Cache-Tag list.
func (e *Entry) Tags() []string {
	return SplitTags(e.Header.Values("Cache-Tag")...)
}

// WriteTo replays the entry on w.  Headers already set on w (the region
// cookie, for example) are kept.
func (e *Entry) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, vs := range e.Header {
		dst[k] = append([]string(nil), vs...)
	}
	dst.Set("Content-Length", strconv.Itoa(len(e.Body)))
	w.WriteHeader(e.Status)
	_, err := w.Write(e.Body)
	return err
}

/*──────────────────────────── header helpers ───────────────────────────────*/

// SplitTags splits comma-joined Cache-Tag values, trimming blanks and
// dropping empties.
func SplitTags(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// mergeTags returns the union of a then b in first-seen order.
func mergeTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// cacheable reports whether a response may be stored: a 2xx status and a
// Cache-Control without private or no-store.
func cacheable(status int, h http.Header) bool {
	if status < 200 || status >= 300 {
		return false
	}
	cc := strings.ToLower(strings.Join(h.Values("Cache-Control"), ","))
	return !strings.Contains(cc, "private") && !strings.Contains(cc, "no-store")
}

// freshness reads the shared-cache lifetime from Cache-Control: s-maxage
// first, then max-age.  ok is false when neither directive is present.
func freshness(cc string) (ttl time.Duration, ok bool) {
	var maxAge, sMaxAge = -1, -1
	for _, part := range strings.Split(cc, ",") {
		name, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(val), `"`))
		if err != nil || n < 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "s-maxage":
			sMaxAge = n
		case "max-age":
			maxAge = n
		}
	}
	switch {
	case sMaxAge >= 0:
		return time.Duration(sMaxAge) * time.Second, true
	case maxAge >= 0:
		return time.Duration(maxAge) * time.Second, true
	}
	return 0, false
}
