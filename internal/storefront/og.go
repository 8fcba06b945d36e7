package storefront

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/storefront/internal/catalog"
	"github.com/yanizio/storefront/internal/reqctx"
)

// ogImage renders a 1200×630 SVG share card.  It lives under /{locale}
// because /api/og is carved out of the excluded paths, which makes it
// locale-prefixed and edge-cached like a page.
func (s *Server) ogImage(w http.ResponseWriter, r *http.Request) {
	pr, err := s.Catalog.Get(r.Context(), chi.URLParam(r, "handle"))
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	reqctx.AddTags(r.Context(), "og", "product:"+pr.Handle)

	locale := s.Localizer.Set.Default
	if rc := reqctx.FromContext(r.Context()); rc != nil && rc.Locale != "" {
		locale = rc.Locale
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	s.render(w, r, http.StatusOK, "og", &page{
		Locale: locale,
		Data: map[string]string{
			"Title": pr.LocalizedTitle(locale),
			"Site":  s.SiteTitle,
		},
	})
}
