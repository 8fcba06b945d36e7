// internal/region/region.go
//
// Region resolver middleware.
//
// Context
// -------
// The third pipeline stage.  The storefront market (currency, shipping,
// and tax) follows a two-letter country code chosen in this order:
//
//   1. the `region` cookie, when it names a supported market,
//   2. the reverse-proxy geo header (`cf-ipcountry`), lower-cased,
//   3. the GeoLite2 country from requestinfo, only when the proxy sent no
//      geo header at all,
//   4. the configured default.
//
// When no valid cookie was present the result is persisted so later
// requests skip detection.  The cookie is readable by client scripts (the
// market picker reads it) and therefore not HttpOnly.
//
// Notes
// -----
// • Excluded paths keep the default bound by the locale stage.
// • Oxford commas, two spaces after periods.

package region

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/requestinfo"
	"github.com/yanizio/storefront/internal/routing"
)

// Resolution sources, used as the metrics label.
const (
	SourceCookie  = "cookie"
	SourceHeader  = "header"
	SourceGeoIP   = "geoip"
	SourceDefault = "default"
)

// Options wires the resolver.
type Options struct {
	Supported    []string
	Default      string
	CookieName   string
	GeoHeader    string
	CookieMaxAge time.Duration
	Matcher      *routing.Matcher
}

// Resolve returns the region-resolver middleware.
func Resolve(opts Options) func(http.Handler) http.Handler {
	supported := make([]string, 0, len(opts.Supported))
	for _, s := range opts.Supported {
		supported = append(supported, strings.ToLower(s))
	}
	opts.Supported = supported

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := reqctx.FromContext(r.Context())
			if rc == nil || opts.Matcher.Excluded(r.URL.Path) {
				if rc != nil && rc.Region == "" {
					rc.Region = opts.Default
					rc.DefaultRegion = opts.Default
				}
				next.ServeHTTP(w, r)
				return
			}

			code, source := opts.pick(r, rc)
			rc.Region = code
			rc.DefaultRegion = opts.Default
			metrics.RegionResolved.WithLabelValues(source).Inc()

			if source != SourceCookie {
				rc.Cookies.Set(&http.Cookie{
					Name:     opts.CookieName,
					Value:    code,
					Path:     "/",
					MaxAge:   int(opts.CookieMaxAge / time.Second),
					HttpOnly: false,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r)
		})
	}
}

// pick applies the precedence and reports where the answer came from.
func (o Options) pick(r *http.Request, rc *reqctx.RequestContext) (string, string) {
	if v, ok := rc.Cookies.Get(o.CookieName); ok && o.allowed(v) {
		return v, SourceCookie
	}

	if raw, present := r.Header[http.CanonicalHeaderKey(o.GeoHeader)]; present {
		if len(raw) > 0 {
			if v := strings.ToLower(strings.TrimSpace(raw[0])); o.allowed(v) {
				return v, SourceHeader
			}
		}
		return o.Default, SourceDefault
	}

	if info := requestinfo.FromContext(r.Context()); info != nil && o.allowed(info.Geo.CountryISO) {
		return info.Geo.CountryISO, SourceGeoIP
	}
	return o.Default, SourceDefault
}

func (o Options) allowed(code string) bool {
	return code != "" && slices.Contains(o.Supported, code)
}
