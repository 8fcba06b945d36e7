package edgecache

import (
	"net/http"
	"net/url"
	"strings"
)

// Key builds the cache key for r: the request origin joined with
// "/_v/{build}{path}{?query}".  Bumping the build version orphans every
// entry written by the previous deploy.  The path keeps its escaping, so
// "a%2Fb" and "a/b" are different entries.
func Key(r *http.Request, build string) string {
	prefix := "/_v/" + build
	u := url.URL{
		Scheme:   Scheme(r),
		Host:     r.Host,
		Path:     prefix + r.URL.Path,
		RawPath:  prefix + r.URL.EscapedPath(),
		RawQuery: r.URL.RawQuery,
	}
	return u.String()
}

// Scheme reports "https" or "http" for r.  X-Forwarded-Proto is honoured
// only when it names one of the two, so a client cannot mint new keys by
// sending arbitrary values.
func Scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	p, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	if strings.EqualFold(strings.TrimSpace(p), "https") {
		return "https"
	}
	return "http"
}
