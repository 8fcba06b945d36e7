// internal/pipeline/pipeline.go
//
// Storefront request pipeline.
//
// Context
// -------
// Every page request crosses four stages in a fixed order:
//
//   1. reqctx.Init       – request-scoped context (executor, jar, tags)
//   2. routing.Locale    – locale prefix, root redirect, segment rewrite
//   3. region.Resolve    – market cookie, geo header, default
//   4. edgecache         – cache-aside with deferred fill
//
// Each stage may answer on its own (302, cache hit) or hand the request to
// the next.  Handlers below the pipeline can rely on a canonical,
// locale-validated path, a bound locale, and a bound region.
//
// Notes
// -----
// • Options.FromConfig derives every stage from *config.Config so cmd/web
//   and the tests build the same chain.
// • Oxford commas, two spaces after periods.

package pipeline

import (
	"net/http"

	"github.com/yanizio/storefront/internal/background"
	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/edgecache"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/region"
	"github.com/yanizio/storefront/internal/routing"
)

// Options configures all four stages.
type Options struct {
	Exec   background.Executor
	Locale routing.LocaleOptions
	Region region.Options
	Cache  edgecache.Options
}

// FromConfig builds Options from cfg.  store may be nil (caching off) and
// vocab supplies the current segment vocabulary.
func FromConfig(cfg *config.Config, exec background.Executor, store edgecache.Store, vocab i18n.VocabularySource) Options {
	matcher := routing.NewMatcher(cfg.Paths.Excluded, cfg.Paths.Cacheable)
	if !cfg.Cache.Enabled || cfg.Cache.Backend == "none" {
		store = nil
	}
	return Options{
		Exec: exec,
		Locale: routing.LocaleOptions{
			Set:           i18n.NewSet(cfg.I18n.DefaultLocale, cfg.I18n.BrowserFallback, cfg.I18n.Locales),
			Vocab:         vocab,
			Matcher:       matcher,
			DefaultRegion: cfg.Region.Default,
		},
		Region: region.Options{
			Supported:    cfg.Region.Supported,
			Default:      cfg.Region.Default,
			CookieName:   cfg.Region.CookieName,
			GeoHeader:    cfg.Region.GeoHeader,
			CookieMaxAge: cfg.Region.CookieMaxAge,
			Matcher:      matcher,
		},
		Cache: edgecache.Options{
			Store:               store,
			BuildVersion:        cfg.Cache.BuildVersion,
			DraftCookie:         cfg.Cache.DraftCookie,
			DefaultCacheControl: cfg.Cache.DefaultCacheControl,
			Matcher:             matcher,
		},
	}
}

// New wraps next in the four stages.
func New(opts Options, next http.Handler) http.Handler {
	h := edgecache.Middleware(opts.Cache)(next)
	h = region.Resolve(opts.Region)(h)
	h = routing.Locale(opts.Locale)(h)
	return reqctx.Init(opts.Exec)(h)
}
