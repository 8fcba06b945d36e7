// internal/storefront/storefront.go
//
// Storefront pages: the handlers that sit below the request pipeline.
//
// Context
// -------
// By the time a request reaches these routes the pipeline has bound a
// supported locale and a region into reqctx, and rewritten localized
// segments to canonical ones, so routes are declared once in canonical form
// (`/{locale}/products/{handle}`) and serve every localized spelling.
//
// Cacheable pages declare cache tags with reqctx.AddTags while rendering.
// Private pages (checkout, order confirmation) send
// `Cache-Control: private, no-store`, which the edge cache answers with
// X-Cache: SKIP.
//
// Region-dependent prices are rendered for every region and picked in the
// browser from the region cookie, so one cached page serves all markets.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package storefront

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/catalog"
	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/edgecache"
	"github.com/yanizio/storefront/internal/form"
	"github.com/yanizio/storefront/internal/head"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/message"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/view"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const privateCacheControl = "private, no-store"

// Deps are the collaborators a Server needs.
type Deps struct {
	Catalog      catalog.Repository
	Orders       commerce.Backend
	Mail         message.Sender
	Localizer    i18n.Localizer
	CSRF         *form.Signer
	BuildVersion string
	SiteTitle    string
	Purge        http.Handler // optional POST /api/cache/purge
}

// Server renders the storefront.
type Server struct {
	Deps
	views    *view.Engine
	validate *validator.Validate
}

// New builds a Server.
func New(d Deps) *Server {
	if d.Mail == nil {
		d.Mail = message.LogSender{}
	}
	if d.CSRF == nil {
		d.CSRF = form.NewSigner("")
	}
	if d.SiteTitle == "" {
		d.SiteTitle = "SolarEdge Supply"
	}
	s := &Server{Deps: d, validate: validator.New()}

	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err) // embedded at build time
	}
	s.views = view.New(sub, s.funcs())
	return s
}

// Routes returns the storefront router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/health", s.health)
	if s.Purge != nil {
		r.Method(http.MethodPost, "/api/cache/purge", s.Purge)
	}
	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/_astro/*", http.StripPrefix("/_astro/", http.FileServerFS(static)))

	r.Route("/{locale}", func(r chi.Router) {
		r.Get("/", s.home)
		r.Get("/products", s.products)
		r.Get("/products/{handle}", s.product)
		r.Get("/faqs", s.faqs)
		r.Get("/checkout", s.checkoutForm)
		r.Post("/checkout", s.checkoutSubmit)
		r.Get("/order/{step}/{id}", s.orderConfirmed)
		r.Get("/api/og/{handle}", s.ogImage)
	})
	r.NotFound(s.notFound)
	return r
}

/*──────────────────────────── page plumbing ────────────────────────────────*/

// page is the data every template receives.
type page struct {
	Head    *head.Builder
	Locale  string
	Region  string
	Locales []string
	Path    string // canonical path without the locale prefix
	Data    any
	Errors  form.FieldErrors
}

func (s *Server) newPage(r *http.Request, title string) *page {
	locale, region := s.Localizer.Set.Default, ""
	if rc := reqctx.FromContext(r.Context()); rc != nil {
		if rc.Locale != "" {
			locale = rc.Locale
		}
		region = rc.Region
	}
	_, canonical := s.Localizer.ParseLocalizedPath(r.URL.Path)

	h := head.New(locale)
	if title != "" {
		h.SetTitle(title + " | " + s.SiteTitle)
	} else {
		h.SetTitle(s.SiteTitle)
	}
	h.SetDescription(i18n.T(locale, "home.hero"))

	base := origin(r)
	for _, loc := range s.Localizer.Set.Locales {
		h.Alternate(loc, base+s.Localizer.LocalizedPath(loc, canonical))
	}
	h.Alternate("x-default", base+s.Localizer.LocalizedPath(s.Localizer.Set.Default, canonical))
	h.Canonical(base + s.Localizer.LocalizedPath(locale, canonical))

	return &page{
		Head:    h,
		Locale:  locale,
		Region:  region,
		Locales: s.Localizer.Set.Locales,
		Path:    canonical,
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p *page) {
	if err := s.views.Render(w, status, name, p); err != nil {
		zap.L().Error("render", zap.String("page", name), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) funcs() template.FuncMap {
	return template.FuncMap{
		"t":     i18n.T,
		"title": i18n.Title,
		"href":  s.Localizer.LocalizedHref,
		"build": func() string { return s.BuildVersion },
	}
}

// origin returns "scheme://host" for absolute links.
func origin(r *http.Request) string {
	return edgecache.Scheme(r) + "://" + r.Host
}
