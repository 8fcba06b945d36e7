package reqctx

import (
	"net/http"
	"sync"
)

// Jar reads cookies from the request and writes Set-Cookie headers on the
// response.  Values set during the request are visible to later Get calls,
// so a resolver that persists a cookie and a handler that reads it agree.
type Jar struct {
	r *http.Request
	w http.ResponseWriter

	mu      sync.Mutex
	pending map[string]*http.Cookie
}

// NewJar binds a jar to one request/response pair.
func NewJar(w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{r: r, w: w, pending: make(map[string]*http.Cookie)}
}

// Get returns the cookie value, preferring values set during this request.
func (j *Jar) Get(name string) (string, bool) {
	j.mu.Lock()
	c, ok := j.pending[name]
	j.mu.Unlock()
	if ok {
		return c.Value, c.MaxAge >= 0
	}
	rc, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return rc.Value, true
}

// Set adds a Set-Cookie header.  It must run before the response headers
// are written.
func (j *Jar) Set(c *http.Cookie) {
	j.mu.Lock()
	j.pending[c.Name] = c
	j.mu.Unlock()
	http.SetCookie(j.w, c)
}

// Has reports whether the request carried the cookie.
func (j *Jar) Has(name string) bool {
	_, err := j.r.Cookie(name)
	return err == nil
}
