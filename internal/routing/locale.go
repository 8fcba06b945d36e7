// internal/routing/locale.go
//
// Locale resolver middleware.
//
// Context
// -------
// The second pipeline stage.  For every request it:
//
//   1. Lets excluded paths through with the default locale and region.
//   2. Redirects "/" (302) to "/{locale}/", choosing the locale from
//      Accept-Language.
//   3. Redirects (302) paths whose first segment is not a supported locale
//      to the same path under the default locale.
//   4. Binds the locale into the RequestContext and rewrites the first
//      segment after the locale from its localized slug to the canonical
//      route, e.g. /ro/produse/x → /ro/products/x.  The rewrite is internal;
//      the client never sees a redirect.
//
// Downstream handlers therefore always see a canonical, locale-validated
// path.
//
// Notes
// -----
// • Unknown segments pass through untranslated.
// • Redirects and rewrites are built from the escaped path, so %2F, %3F,
//   and %23 inside a segment keep their meaning.
// • Oxford commas, two spaces after periods.

package routing

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/reqctx"
)

// LocaleOptions wires the locale resolver.
type LocaleOptions struct {
	Set           *i18n.Set
	Vocab         i18n.VocabularySource
	Matcher       *Matcher
	DefaultRegion string
}

// Locale returns the locale-resolver middleware.  It expects reqctx.Init
// to have run; without it the locale is not recorded but routing still
// works.
func Locale(opts LocaleOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := reqctx.FromContext(r.Context())
			path := r.URL.EscapedPath()

			if opts.Matcher.Excluded(path) {
				if rc != nil {
					rc.Locale = opts.Set.Default
					rc.Region = opts.DefaultRegion
					rc.DefaultRegion = opts.DefaultRegion
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := i18n.Segments(path)
			if len(parts) == 0 {
				target := "/" + opts.Set.FromAcceptLanguage(r.Header.Get("Accept-Language")) + "/"
				metrics.LocaleRedirects.WithLabelValues("root").Inc()
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			first := strings.ToLower(parts[0])
			if !opts.Set.Supported(first) {
				target := "/" + opts.Set.Default + path
				metrics.LocaleRedirects.WithLabelValues("prefix").Inc()
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			if rc != nil {
				rc.Locale = first
			}

			rest := parts[1:]
			if len(rest) > 0 {
				rest[0] = canonicalSegment(opts.Vocab.Vocabulary(), rest[0])
				canonical := "/" + first + "/" + strings.Join(rest, "/")
				if canonical != path {
					rewrite(r, canonical)
					metrics.LocaleRewrites.Inc()
					zap.L().Debug("locale rewrite",
						zap.String("from", path),
						zap.String("to", canonical))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// canonicalSegment maps one escaped segment to its canonical form.  The
// result stays escaped; unknown segments come back untouched.
func canonicalSegment(v *i18n.Vocabulary, escaped string) string {
	seg, err := url.PathUnescape(escaped)
	if err != nil {
		return escaped
	}
	if c := v.Canonicalize(seg); c != seg {
		return url.PathEscape(c)
	}
	return escaped
}

// rewrite points r at the escaped path p in place, keeping the query
// string.  RawPath is kept only when p is not the default encoding of its
// decoded form.
func rewrite(r *http.Request, p string) {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return
	}
	r.URL.Path = decoded
	r.URL.RawPath = p
	if (&url.URL{Path: decoded}).EscapedPath() == p {
		r.URL.RawPath = ""
	}
	r.RequestURI = r.URL.RequestURI()
}
