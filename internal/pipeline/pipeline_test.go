// internal/pipeline/pipeline_test.go
//
// End-to-end tests of the four-stage chain built from default config.

package pipeline

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/edgecache"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/reqctx"
)

type observed struct {
	calls  atomic.Int32
	path   string
	locale string
	region string
}

func build(t *testing.T, cc string) (http.Handler, *observed, *edgecache.MemoryStore) {
	t.Helper()
	cfg := config.Defaults()
	store := edgecache.NewMemoryStore(64)
	obs := &observed{}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		obs.calls.Add(1)
		rc := reqctx.FromContext(r.Context())
		obs.path, obs.locale, obs.region = r.URL.Path, rc.Locale, rc.Region
		reqctx.AddTags(r.Context(), "page")
		if cc != "" {
			w.Header().Set("Cache-Control", cc)
		}
		_, _ = w.Write([]byte("body:" + r.URL.Path))
	})
	opts := FromConfig(cfg, nil, store, i18n.NewVocabulary(cfg.I18n.Segments))
	return New(opts, next), obs, store
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPipeline_ExcludedUsesDefaults(t *testing.T) {
	h, obs, store := build(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.AddCookie(&http.Cookie{Name: "region", Value: "de"})
	req.Header.Set("cf-ipcountry", "FR")
	req.Header.Set("Accept-Language", "en")

	rr := serve(h, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ro", obs.locale)
	assert.Equal(t, "ro", obs.region)
	assert.Empty(t, rr.Header().Get("X-Cache"))
	assert.Empty(t, rr.Result().Cookies())
	assert.Equal(t, 0, store.Len())
}

func TestPipeline_RootRedirect(t *testing.T) {
	h, obs, _ := build(t, "")
	for header, want := range map[string]string{"ro": "/ro/", "de-DE": "/en/"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", header)
		rr := serve(h, req)
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, want, rr.Header().Get("Location"))
	}
	assert.Equal(t, int32(0), obs.calls.Load())
}

func TestPipeline_UnknownPrefixRedirect(t *testing.T) {
	h, _, _ := build(t, "")
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/xx/anything", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/ro/xx/anything", rr.Header().Get("Location"))
}

func TestPipeline_RewriteThenCacheCanonical(t *testing.T) {
	h, obs, _ := build(t, "")

	rr := serve(h, httptest.NewRequest(http.MethodGet, "http://shop.example/ro/produse/x", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/ro/products/x", obs.path)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	// The canonical spelling shares the entry written by the localized one.
	rr = serve(h, httptest.NewRequest(http.MethodGet, "http://shop.example/ro/products/x", nil))
	assert.Equal(t, int32(1), obs.calls.Load())
	assert.Equal(t, "body:/ro/products/x", rr.Body.String())
}

func TestPipeline_RegionCookieWinsAndPersists(t *testing.T) {
	h, obs, _ := build(t, "private")

	req := httptest.NewRequest(http.MethodGet, "/en/", nil)
	req.AddCookie(&http.Cookie{Name: "region", Value: "de"})
	req.Header.Set("cf-ipcountry", "FR")
	rr := serve(h, req)
	assert.Equal(t, "de", obs.region)
	assert.Empty(t, rr.Result().Cookies())

	req = httptest.NewRequest(http.MethodGet, "/en/", nil)
	req.Header.Set("cf-ipcountry", "FR")
	rr = serve(h, req)
	assert.Equal(t, "fr", obs.region)
	require.Len(t, rr.Result().Cookies(), 1)
	assert.Equal(t, "fr", rr.Result().Cookies()[0].Value)
}

func TestPipeline_CacheRoundTrip(t *testing.T) {
	h, obs, _ := build(t, "")

	first := serve(h, httptest.NewRequest(http.MethodGet, "http://shop.example/en/faqs?q=1", nil))
	second := serve(h, httptest.NewRequest(http.MethodGet, "http://shop.example/en/faqs?q=1", nil))

	assert.Equal(t, int32(1), obs.calls.Load())
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Empty(t, second.Header().Get("X-Cache"))
	assert.Equal(t, "page", second.Header().Get("Cache-Tag"))
	assert.Equal(t, config.DefaultCacheControl, second.Header().Get("Cache-Control"))

	// The hit still carries the region cookie for a first-time visitor.
	require.Len(t, second.Result().Cookies(), 1)
	assert.Equal(t, "region", second.Result().Cookies()[0].Name)
}

func TestPipeline_PrivateNeverCached(t *testing.T) {
	h, obs, store := build(t, "private, max-age=0")
	for i := 0; i < 2; i++ {
		rr := serve(h, httptest.NewRequest(http.MethodGet, "/ro/checkout", nil))
		assert.Equal(t, "SKIP", rr.Header().Get("X-Cache"))
	}
	assert.Equal(t, int32(2), obs.calls.Load())
	assert.Equal(t, 0, store.Len())
}

func TestPipeline_DraftModeBypasses(t *testing.T) {
	h, obs, store := build(t, "")
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ro/", nil)
		req.Header.Set("Cookie", "sanity-draft-mode=true")
		rr := serve(h, req)
		assert.Empty(t, rr.Header().Get("X-Cache"))
	}
	assert.Equal(t, int32(2), obs.calls.Load())
	assert.Equal(t, 0, store.Len())
}

func TestPipeline_CacheDisabledByConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Cache.Backend = "none"
	opts := FromConfig(cfg, nil, edgecache.NewMemoryStore(1), i18n.NewVocabulary(nil))
	assert.Nil(t, opts.Cache.Store)
}
