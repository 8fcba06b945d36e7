package edgecache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/storefront/internal/background"
	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/routing"
)

type page struct {
	calls   atomic.Int32
	status  int
	cc      string
	tagHdr  string
	ctxTags []string
	body    string
}

func (p *page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.calls.Add(1)
	reqctx.AddTags(r.Context(), p.ctxTags...)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.cc != "" {
		w.Header().Set("Cache-Control", p.cc)
	}
	if p.tagHdr != "" {
		w.Header().Set("Cache-Tag", p.tagHdr)
	}
	http.SetCookie(w, &http.Cookie{Name: "visitor", Value: "secret"})
	if p.status != 0 {
		w.WriteHeader(p.status)
	}
	_, _ = w.Write([]byte(p.body))
}

func stack(store Store, exec background.Executor, next http.Handler) http.Handler {
	mw := Middleware(Options{
		Store:               store,
		BuildVersion:        "b1",
		DraftCookie:         "sanity-draft-mode",
		DefaultCacheControl: config.DefaultCacheControl,
		Matcher:             routing.NewMatcher([]string{"/api"}, []string{"/api/og"}),
	})
	return reqctx.Init(exec)(mw(next))
}

func get(h http.Handler, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_RoundTrip(t *testing.T) {
	store := NewMemoryStore(16)
	p := &page{body: "<h1>Produse</h1>", tagHdr: "products, shared", ctxTags: []string{"product:x", "shared"}}
	h := stack(store, nil, p)

	first := get(h, "http://shop.example/ro/products/x?v=1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "<h1>Produse</h1>", first.Body.String())
	assert.Empty(t, first.Header().Get("Cache-Control"), "default only applies to the stored copy")

	second := get(h, "http://shop.example/ro/products/x?v=1")
	assert.Equal(t, int32(1), p.calls.Load(), "hit must not reach downstream")
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, "text/html; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Empty(t, second.Header().Get("X-Cache"))
	assert.Empty(t, second.Header().Get("Set-Cookie"))
	assert.Equal(t, config.DefaultCacheControl, second.Header().Get("Cache-Control"))
	assert.Equal(t, "product:x,shared,products", second.Header().Get("Cache-Tag"))

	// Different query or build is a different key.
	get(h, "http://shop.example/ro/products/x?v=2")
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestMiddleware_RequestIDNotReplayed(t *testing.T) {
	store := NewMemoryStore(16)
	h := stack(store, nil, &page{body: "x"})
	withID := func(id string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Request-Id", id)
			h.ServeHTTP(w, r)
		})
	}

	first := get(withID("req-1"), "http://shop.example/ro/")
	assert.Equal(t, "req-1", first.Header().Get("X-Request-Id"))

	second := get(withID("req-2"), "http://shop.example/ro/")
	assert.Empty(t, second.Header().Get("X-Cache"))
	assert.Equal(t, "req-2", second.Header().Get("X-Request-Id"))
}

func TestMiddleware_PrivateIsSkipped(t *testing.T) {
	store := NewMemoryStore(16)
	p := &page{cc: "private, no-store", body: "cart"}
	h := stack(store, nil, p)

	for i := 0; i < 2; i++ {
		rr := get(h, "http://shop.example/ro/checkout")
		assert.Equal(t, "SKIP", rr.Header().Get("X-Cache"))
	}
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, 0, store.Len())
}

func TestMiddleware_Non2xxIsSkipped(t *testing.T) {
	store := NewMemoryStore(16)
	p := &page{status: http.StatusNotFound, body: "nope"}
	h := stack(store, nil, p)

	rr := get(h, "http://shop.example/ro/products/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "SKIP", rr.Header().Get("X-Cache"))
	assert.Equal(t, 0, store.Len())
}

func TestMiddleware_Bypass(t *testing.T) {
	cases := map[string]func(*http.Request){
		"draft cookie": func(r *http.Request) { r.Header.Set("Cookie", "a=b; sanity-draft-mode=true") },
		"post":         func(r *http.Request) { r.Method = http.MethodPost },
		"excluded":     func(r *http.Request) { r.URL.Path = "/api/health" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStore(16)
			p := &page{body: "x"}
			h := stack(store, nil, p)

			for i := 0; i < 2; i++ {
				rr := get(h, "http://shop.example/ro/", mutate)
				assert.Empty(t, rr.Header().Get("X-Cache"))
			}
			assert.Equal(t, int32(2), p.calls.Load())
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestMiddleware_DraftCookieIgnoresPrimedEntry(t *testing.T) {
	store := NewMemoryStore(16)
	p := &page{body: "published"}
	h := stack(store, nil, p)

	get(h, "http://shop.example/en/")
	p.body = "draft"
	rr := get(h, "http://shop.example/en/", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "sanity-draft-mode", Value: "true"})
	})
	assert.Equal(t, "draft", rr.Body.String())
}

func TestMiddleware_NilStoreBypasses(t *testing.T) {
	p := &page{body: "x"}
	h := stack(nil, nil, p)
	rr := get(h, "http://shop.example/en/")
	assert.Empty(t, rr.Header().Get("X-Cache"))
	assert.Equal(t, "x", rr.Body.String())
}

func TestMiddleware_ImplicitOKAndEmptyBody(t *testing.T) {
	store := NewMemoryStore(16)
	h := stack(store, nil, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := get(h, "http://shop.example/en/empty")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(t, 1, store.Len())
}

func TestMiddleware_ZeroLifetimeNotStored(t *testing.T) {
	store := NewMemoryStore(16)
	h := stack(store, nil, &page{cc: "public, max-age=0", body: "x"})

	rr := get(h, "http://shop.example/en/")
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(t, 0, store.Len())
}

type failingStore struct{ Store }

func (failingStore) Match(context.Context, string) (*Entry, error) {
	return nil, errors.New("lookup down")
}

func (failingStore) Put(context.Context, string, *Entry, time.Duration) error {
	return errors.New("write down")
}

func TestMiddleware_StoreErrorsDoNotReachClient(t *testing.T) {
	p := &page{body: "ok"}
	h := stack(failingStore{Store: NewMemoryStore(4)}, nil, p)

	rr := get(h, "http://shop.example/en/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(t, "ok", rr.Body.String())
}

func TestMiddleware_DeferredFillOnRunner(t *testing.T) {
	store := NewMemoryStore(16)
	runner := background.New(4)
	p := &page{body: "later", ctxTags: []string{"home"}}
	h := stack(store, runner, p)

	rr := get(h, "http://shop.example/ro/")
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, runner.Drain(ctx))

	n, err := store.PurgeTags(context.Background(), []string{"home"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "fill must carry the request's collected tags")
}

func TestRecorder_FlushAndInformational(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := newRecorder(rr)

	rec.WriteHeader(http.StatusEarlyHints)
	assert.False(t, rec.wroteHeader)

	rec.Flush()
	assert.True(t, rec.wroteHeader)
	assert.True(t, rr.Flushed)
	assert.True(t, rec.captured())
	assert.Equal(t, rr, rec.Unwrap())
}
