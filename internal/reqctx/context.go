// internal/reqctx/context.go
//
// Request-scoped mutable context.
//
/*
Context
--------
Init is the first stage of the storefront pipeline.  For every request it
builds one *RequestContext holding:

  1. Exec    – the background executor used to defer work past the
               response boundary (nil means "run inline").
  2. Cookies – a cookie jar reading the request and writing Set-Cookie.
  3. Tags    – the set of cache tags pages declare while rendering.
  4. Locale, Region, DefaultRegion – filled by the resolvers downstream.

The pointer is stored in `request.Context` under an unexported key.
Deferred work that must observe the same values (the edge-cache fill)
receives the pointer explicitly and re-binds it with With, rather than
relying on the request context staying alive.

Notes
-----
  • One RequestContext per request; never shared across requests.
  • Locale and Region are written by the resolvers before any handler runs
    and are read-only afterwards.  Tags is safe for concurrent use.
  • Oxford commas, two spaces after periods.
*/
package reqctx

import (
	"context"
	"net/http"

	"github.com/yanizio/storefront/internal/background"
)

// RequestContext is created once per inbound request.
type RequestContext struct {
	Exec    background.Executor
	Cookies *Jar
	Tags    *TagSet

	Locale        string
	Region        string
	DefaultRegion string
}

type ctxKey struct{} // unexported, collision-proof

// With binds rc to ctx.
func With(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the pointer previously stored by Init or With.  It
// returns nil if neither has run.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)
	return rc
}

// AddTags records cache tags on the request bound to ctx.  It is a no-op
// outside the pipeline, so page code can call it unconditionally.
func AddTags(ctx context.Context, tags ...string) {
	if rc := FromContext(ctx); rc != nil {
		rc.Tags.Add(tags...)
	}
}

/*──────────────────────────── middleware ───────────────────────────────────*/

// Init returns the context-initializer middleware.  exec may be nil when no
// background facility exists (tests, CLI renders).
func Init(exec background.Executor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := &RequestContext{
				Exec:    exec,
				Cookies: NewJar(w, r),
				Tags:    NewTagSet(),
			}
			next.ServeHTTP(w, r.WithContext(With(r.Context(), rc)))
		})
	}
}
