// internal/routing/locale_test.go
//
// Unit-tests for the locale resolver and exclusion matcher.
//
// Context
// -------
// These tests pin the observable contract of the second pipeline stage:
//
//   • Excluded paths          → defaults bound, path untouched
//   • Root "/"                → 302 to /ro/ or /en/ by Accept-Language
//   • Unknown prefix          → 302 to /{default}{path}
//   • Localized first segment → internal rewrite, no 3xx
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/reqctx"
)

var testSegments = map[string]map[string]string{
	"products":  {"ro": "produse", "en": "products"},
	"checkout":  {"ro": "finalizare", "en": "checkout"},
	"order":     {"ro": "comanda", "en": "order"},
	"confirmed": {"ro": "confirmata", "en": "confirmed"},
	"faqs":      {"ro": "intrebari", "en": "faqs"},
}

func testMatcher() *Matcher {
	return NewMatcher(
		[]string{"/api", "/images", "/icons", "/cdn-cgi", "/favicon.ico", "/_astro", "/cms"},
		[]string{"/api/og"},
	)
}

func localeHandler(next http.Handler) http.Handler {
	mw := Locale(LocaleOptions{
		Set:           i18n.NewSet("ro", "en", []string{"ro", "en"}),
		Vocab:         i18n.NewVocabulary(testSegments),
		Matcher:       testMatcher(),
		DefaultRegion: "ro",
	})
	return reqctx.Init(nil)(mw(next))
}

type seen struct {
	path    string
	escaped string
	locale string
	region string
	called bool
}

func capture(s *seen) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.path = r.URL.Path
		s.escaped = r.URL.EscapedPath()
		if rc := reqctx.FromContext(r.Context()); rc != nil {
			s.locale = rc.Locale
			s.region = rc.Region
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMatcher(t *testing.T) {
	m := testMatcher()
	cases := map[string]bool{
		"/api":             true,
		"/api/health":      true,
		"/apis":            false,
		"/api/og":          false,
		"/api/og/panel":    false,
		"/favicon.ico":     true,
		"/cms/desk":        true,
		"/ro/products":     false,
		"/_astro/x.js":     true,
		"/images/logo.svg": true,
	}
	for p, want := range cases {
		if got := m.Excluded(p); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestLocale_ExcludedGetsDefaults(t *testing.T) {
	var s seen
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Accept-Language", "en-US")
	req.AddCookie(&http.Cookie{Name: "region", Value: "de"})
	rr := httptest.NewRecorder()

	localeHandler(capture(&s)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || !s.called {
		t.Fatalf("status = %d, called = %v", rr.Code, s.called)
	}
	if s.path != "/api/health" || s.locale != "ro" || s.region != "ro" {
		t.Fatalf("got %+v", s)
	}
}

func TestLocale_RootRedirect(t *testing.T) {
	cases := map[string]string{
		"ro-RO,ro;q=0.9": "/ro/",
		"en-US,en;q=0.9": "/en/",
		"":               "/en/",
	}
	for header, want := range cases {
		var s seen
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Accept-Language", header)
		}
		rr := httptest.NewRecorder()

		localeHandler(capture(&s)).ServeHTTP(rr, req)

		if rr.Code != http.StatusFound {
			t.Fatalf("%q: status = %d, want 302", header, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != want {
			t.Fatalf("%q: Location = %q, want %q", header, loc, want)
		}
		if s.called {
			t.Fatalf("%q: downstream called on redirect", header)
		}
	}
}

func TestLocale_UnknownPrefixRedirect(t *testing.T) {
	var s seen
	req := httptest.NewRequest(http.MethodGet, "/xx/anything", nil)
	rr := httptest.NewRecorder()

	localeHandler(capture(&s)).ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/ro/xx/anything" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestLocale_CacheableAPIIsNotExcluded(t *testing.T) {
	var s seen
	rr := httptest.NewRecorder()
	localeHandler(capture(&s)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/og/panel", nil))

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/ro/api/og/panel" {
		t.Fatalf("status = %d, Location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLocale_RewriteLocalizedSegment(t *testing.T) {
	var s seen
	req := httptest.NewRequest(http.MethodGet, "/ro/produse/x?v=1", nil)
	rr := httptest.NewRecorder()

	localeHandler(capture(&s)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no client redirect)", rr.Code)
	}
	if s.path != "/ro/products/x" || s.locale != "ro" {
		t.Fatalf("got %+v", s)
	}
	if req.URL.RawQuery != "v=1" || req.RequestURI != "/ro/products/x?v=1" {
		t.Fatalf("query lost: %q %q", req.URL.RawQuery, req.RequestURI)
	}
}

func TestLocale_OnlyFirstSegmentTranslated(t *testing.T) {
	var s seen
	rr := httptest.NewRecorder()
	localeHandler(capture(&s)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ro/comanda/confirmata/42", nil))

	if s.path != "/ro/order/confirmata/42" {
		t.Fatalf("path = %q", s.path)
	}
}

func TestLocale_CanonicalAndUnknownPassThrough(t *testing.T) {
	for _, p := range []string{"/en/products/x", "/ro/blog/post", "/ro", "/en/"} {
		var s seen
		rr := httptest.NewRecorder()
		localeHandler(capture(&s)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, p, nil))

		if rr.Code != http.StatusOK || s.path != p {
			t.Fatalf("%s: status = %d, path = %q", p, rr.Code, s.path)
		}
	}
}

func TestLocale_UpperCaseLocaleCanonicalized(t *testing.T) {
	var s seen
	rr := httptest.NewRecorder()
	localeHandler(capture(&s)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/EN/faqs", nil))

	if s.path != "/en/faqs" || s.locale != "en" {
		t.Fatalf("got %+v", s)
	}
}

func TestLocale_EscapedRedirectKeepsEncoding(t *testing.T) {
	cases := map[string]string{
		"/xx/a%3Fb":   "/ro/xx/a%3Fb",
		"/xx/a%23b":   "/ro/xx/a%23b",
		"/xx/a%2Fb":   "/ro/xx/a%2Fb",
		"/xx/%C8%99a": "/ro/xx/%C8%99a",
	}
	for in, want := range cases {
		var s seen
		rr := httptest.NewRecorder()
		localeHandler(capture(&s)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, in, nil))

		if rr.Code != http.StatusFound {
			t.Fatalf("%s: status = %d, want 302", in, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != want {
			t.Fatalf("%s: Location = %q, want %q", in, loc, want)
		}
	}
}

func TestLocale_EscapedRewriteKeepsEncoding(t *testing.T) {
	cases := []struct {
		in, path, escaped string
	}{
		{"/ro/produse/a%2Fb", "/ro/products/a/b", "/ro/products/a%2Fb"},
		{"/ro/produse/a%3Fb?v=1", "/ro/products/a?b", "/ro/products/a%3Fb"},
		{"/ro/produse/%C8%99ina", "/ro/products/șina", "/ro/products/%C8%99ina"},
	}
	for _, c := range cases {
		var s seen
		rr := httptest.NewRecorder()
		localeHandler(capture(&s)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, c.in, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", c.in, rr.Code)
		}
		if s.path != c.path || s.escaped != c.escaped {
			t.Fatalf("%s: path = %q, escaped = %q", c.in, s.path, s.escaped)
		}
	}
}
