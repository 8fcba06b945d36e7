package edgecache

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFreshness(t *testing.T) {
	cases := map[string]struct {
		ttl time.Duration
		ok  bool
	}{
		"public, max-age=0, s-maxage=31536000": {365 * 24 * time.Hour, true},
		"max-age=60":                           {time.Minute, true},
		"public, max-age=0":                    {0, true},
		"public":                               {0, false},
		"":                                     {0, false},
		`s-maxage="30"`:                        {30 * time.Second, true},
		"max-age=abc":                          {0, false},
	}
	for cc, want := range cases {
		ttl, ok := freshness(cc)
		assert.Equal(t, want.ttl, ttl, cc)
		assert.Equal(t, want.ok, ok, cc)
	}
}

func TestCacheable(t *testing.T) {
	h := func(cc string) http.Header {
		out := http.Header{}
		if cc != "" {
			out.Set("Cache-Control", cc)
		}
		return out
	}
	assert.True(t, cacheable(200, h("")))
	assert.True(t, cacheable(204, h("public, max-age=60")))
	assert.False(t, cacheable(200, h("private, max-age=0")))
	assert.False(t, cacheable(200, h("No-Store")))
	assert.False(t, cacheable(301, h("")))
	assert.False(t, cacheable(404, h("")))
	assert.False(t, cacheable(500, h("")))
}

func TestTagsHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitTags(" a, ,b", "c"))
	assert.Equal(t, []string{"x", "a", "y"}, mergeTags([]string{"x", "a"}, []string{"a", "y"}))
}

func TestKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://shop.example/ro/products/x?v=1&w=2", nil)
	assert.Equal(t, "http://shop.example/_v/abc123/ro/products/x?v=1&w=2", Key(r, "abc123"))

	r = httptest.NewRequest(http.MethodGet, "http://shop.example/en/", nil)
	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://shop.example/_v/abc123/en/", Key(r, "abc123"))

	r = httptest.NewRequest(http.MethodGet, "http://shop.example/en/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://shop.example/_v/v2/en/", Key(r, "v2"))

	r = httptest.NewRequest(http.MethodGet, "http://shop.example/ro/products/a%2Fb", nil)
	assert.Equal(t, "http://shop.example/_v/b1/ro/products/a%2Fb", Key(r, "b1"))
}

func TestScheme_ForwardedProtoIsRestricted(t *testing.T) {
	cases := map[string]string{
		"":             "http",
		"https":        "https",
		"HTTPS, http":  "https",
		"http":         "http",
		"gopher":       "http",
		"evil.example": "http",
	}
	for hdr, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "http://shop.example/en/", nil)
		if hdr != "" {
			r.Header.Set("X-Forwarded-Proto", hdr)
		}
		assert.Equal(t, want, Scheme(r), hdr)
		assert.Equal(t, want+"://shop.example/_v/b1/en/", Key(r, "b1"), hdr)
	}
}

func TestEntryWriteTo_KeepsExistingHeaders(t *testing.T) {
	e := &Entry{
		Status: 200,
		Header: http.Header{"Content-Type": {"text/html"}, "Cache-Tag": {"home"}},
		Body:   []byte("<p>hi</p>"),
	}
	rr := httptest.NewRecorder()
	rr.Header().Add("Set-Cookie", "region=ro; Path=/")

	assert.NoError(t, e.WriteTo(rr))
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, "text/html", rr.Header().Get("Content-Type"))
	assert.Equal(t, "region=ro; Path=/", rr.Header().Get("Set-Cookie"))
	assert.Equal(t, "<p>hi</p>", rr.Body.String())
	assert.Empty(t, rr.Header().Get("X-Cache"))
}
