// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  self-only policy; storefront scripts live
//                                  under /_astro on the same origin
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP, because once a handler writes
//   the status line later header changes are lost.  Handlers may still
//   override a value, and a cache hit replays stored headers over these.
// • HSTS is only sent when hsts is true, so local HTTP development does not
//   pin localhost to HTTPS.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

const (
	hstsValue = "max-age=63072000; includeSubDomains; preload"
	cspValue  = "default-src 'self'; img-src 'self' data: https:; object-src 'none'; " +
		"base-uri 'self'; form-action 'self'; frame-ancestors 'none'"
)

// Security sets security headers for every response.
func Security(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if hsts {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			h.Set("Content-Security-Policy", cspValue)
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			next.ServeHTTP(w, r)
		})
	}
}
