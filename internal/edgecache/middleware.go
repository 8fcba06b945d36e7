// internal/edgecache/middleware.go
//
// Edge-cache middleware (cache-aside with deferred fill).
//
/*
Context
--------
The fourth and last pipeline stage.  Per request:

  • Bypass   – non-GET, excluded path, draft-preview cookie, or no store.
               The request goes straight downstream, untouched.
  • Lookup   – Key(r, build) against the store.
  • Hit      – the stored response is replayed and downstream never runs.
               No X-Cache header is added on this path.
  • Miss     – downstream runs through a recorder.  Ineligible responses
               get X-Cache: SKIP.  Eligible ones get X-Cache: MISS and a
               copy is handed to deferred work that normalises headers and
               writes the entry.

The deferred fill runs on the request's background executor
(reqctx.RequestContext.Exec) when there is one and inline otherwise.  It
re-binds the request's RequestContext, so tags recorded by the handler are
attributed to the right entry, and it drops the request's cancellation so
a client disconnect does not abort the write.

Notes
-----
  • Store errors are logged at WARN and counted; they never reach the
    client and are not retried.  A failing lookup degrades to a miss.
  • Set-Cookie and X-Request-Id are never stored.  Both describe the
    request that filled the entry, not the visitors who hit it.
  • Oxford commas, two spaces after periods.
*/
package edgecache

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/routing"
)

// perRequestHeaders belong to the response that filled the entry and are
// never replayed to later visitors.
var perRequestHeaders = []string{"Set-Cookie", "X-Request-Id"}

// Options wires the middleware.
type Options struct {
	Store               Store // nil disables caching entirely
	BuildVersion        string
	DraftCookie         string // bypass when "{DraftCookie}=true" is sent
	DefaultCacheControl string
	Matcher             *routing.Matcher
}

// Middleware returns the edge-cache stage.
func Middleware(opts Options) func(http.Handler) http.Handler {
	draftNeedle := opts.DraftCookie + "=true"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.bypass(r, draftNeedle) {
				metrics.EdgeCacheRequests.WithLabelValues(metrics.CacheBypass).Inc()
				next.ServeHTTP(w, r)
				return
			}

			key := Key(r, opts.BuildVersion)
			hit, err := opts.Store.Match(r.Context(), key)
			if err != nil {
				zap.L().Warn("edge cache lookup failed", zap.String("key", key), zap.Error(err))
			}
			if hit != nil {
				metrics.EdgeCacheRequests.WithLabelValues(metrics.CacheHit).Inc()
				if err := hit.WriteTo(w); err != nil {
					zap.L().Debug("edge cache replay", zap.String("key", key), zap.Error(err))
				}
				return
			}

			rec := newRecorder(w)
			next.ServeHTTP(rec, r)
			if !rec.wroteHeader {
				rec.WriteHeader(http.StatusOK)
			}
			if !rec.captured() {
				metrics.EdgeCacheRequests.WithLabelValues(metrics.CacheSkip).Inc()
				return
			}
			metrics.EdgeCacheRequests.WithLabelValues(metrics.CacheMiss).Inc()

			entry := &Entry{
				Status: rec.status,
				Header: rec.header,
				Body:   rec.body.Bytes(),
			}
			rc := reqctx.FromContext(r.Context())
			fill := func(ctx context.Context) { opts.fill(ctx, key, entry, rc) }

			if rc != nil && rc.Exec != nil {
				rc.Exec.WaitUntil(reqctx.With(r.Context(), rc), fill)
				return
			}
			fill(context.WithoutCancel(r.Context()))
		})
	}
}

func (o Options) bypass(r *http.Request, draftNeedle string) bool {
	if o.Store == nil || r.Method != http.MethodGet {
		return true
	}
	if o.Matcher != nil && o.Matcher.Excluded(r.URL.Path) {
		return true
	}
	if o.DraftCookie != "" {
		for _, c := range r.Header.Values("Cookie") {
			if strings.Contains(c, draftNeedle) {
				return true
			}
		}
	}
	return false
}

// fill normalises the captured response and writes it to the store.
func (o Options) fill(ctx context.Context, key string, e *Entry, rc *reqctx.RequestContext) {
	if rc != nil {
		ctx = reqctx.With(ctx, rc)
	}
	h := e.Header
	for _, k := range perRequestHeaders {
		h.Del(k)
	}

	if h.Get("Cache-Control") == "" {
		h.Set("Cache-Control", o.DefaultCacheControl)
	}

	var collected []string
	if rc != nil {
		collected = rc.Tags.List()
	}
	if tags := mergeTags(collected, SplitTags(h.Values("Cache-Tag")...)); len(tags) > 0 {
		h.Set("Cache-Tag", strings.Join(tags, ","))
	}

	ttl, explicit := freshness(h.Get("Cache-Control"))
	if explicit && ttl <= 0 {
		zap.L().Debug("edge cache fill skipped, zero lifetime", zap.String("key", key))
		return
	}
	e.StoredAt = time.Now().UTC()

	if err := o.Store.Put(ctx, key, e, ttl); err != nil {
		metrics.EdgeCacheStoreErrors.Inc()
		zap.L().Warn("edge cache store failed", zap.String("key", key), zap.Error(err))
		return
	}
	zap.L().Debug("edge cache stored",
		zap.String("key", key),
		zap.Int("status", e.Status),
		zap.Int("bytes", len(e.Body)),
		zap.Duration("ttl", ttl))
}
