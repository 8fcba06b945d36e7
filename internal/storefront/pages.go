package storefront

import (
	"encoding/json"
	"errors"
	"html/template"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/catalog"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/reqctx"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "build": s.BuildVersion})
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	reqctx.AddTags(r.Context(), "home")
	p := s.newPage(r, "")

	products, err := s.Catalog.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if len(products) > 4 {
		products = products[:4]
	}
	for _, pr := range products {
		reqctx.AddTags(r.Context(), "product:"+pr.Handle)
	}
	p.Data = products
	s.render(w, r, http.StatusOK, "home", p)
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	reqctx.AddTags(r.Context(), "products")
	products, err := s.Catalog.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	for _, pr := range products {
		reqctx.AddTags(r.Context(), "product:"+pr.Handle)
	}
	p := s.newPage(r, "")
	p.Head.SetTitle(i18n.T(p.Locale, "nav.products") + " | " + s.SiteTitle)
	p.Data = products
	s.render(w, r, http.StatusOK, "products", p)
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) {
	pr, err := s.Catalog.Get(r.Context(), chi.URLParam(r, "handle"))
	if errors.Is(err, catalog.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	reqctx.AddTags(r.Context(), pr.CacheTags()...)
	w.Header().Set("Cache-Tag", "products")

	p := s.newPage(r, "")
	p.Head.SetTitle(pr.LocalizedTitle(p.Locale) + " | " + s.SiteTitle)
	if d := pr.LocalizedDescription(p.Locale); d != "" {
		p.Head.SetDescription(d)
	}
	p.Head.Meta(`<meta property="og:image" content="` + template.HTMLEscapeString(origin(r)+
		s.Localizer.LocalizedPath(p.Locale, "/api/og/"+pr.Handle)) + `">`)
	if ld, err := productJSONLD(pr, p.Locale); err == nil {
		p.Head.JSONLD(ld)
	}
	p.Data = pr
	s.render(w, r, http.StatusOK, "product", p)
}

func (s *Server) faqs(w http.ResponseWriter, r *http.Request) {
	reqctx.AddTags(r.Context(), "faqs")
	p := s.newPage(r, "")
	p.Head.SetTitle(i18n.T(p.Locale, "faqs.title") + " | " + s.SiteTitle)
	p.Data = faqsFor(p.Locale)
	s.render(w, r, http.StatusOK, "faqs", p)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "")
	p.Head.SetTitle(i18n.T(p.Locale, "notfound.title") + " | " + s.SiteTitle)
	s.render(w, r, http.StatusNotFound, "notfound", p)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("storefront", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// productJSONLD emits schema.org Product markup with every regional offer.
func productJSONLD(p *catalog.Product, locale string) (string, error) {
	type offer struct {
		Type     string `json:"@type"`
		Price    string `json:"price"`
		Currency string `json:"priceCurrency"`
		Area     string `json:"areaServed"`
	}
	doc := struct {
		Context string  `json:"@context"`
		Type    string  `json:"@type"`
		Name    string  `json:"name"`
		SKU     string  `json:"sku"`
		Offers  []offer `json:"offers,omitempty"`
	}{"https://schema.org", "Product", p.LocalizedTitle(locale), p.Handle, nil}

	for _, region := range slices.Sorted(maps.Keys(p.Prices)) {
		m := p.Prices[region]
		doc.Offers = append(doc.Offers, offer{
			Type:     "Offer",
			Price:    m.Decimal(),
			Currency: m.Currency,
			Area:     region,
		})
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

type faq struct{ Q, A string }

var faqTable = map[string][]faq{
	"ro": {
		{"Cat dureaza livrarea?", "Livrarea standard dureaza intre 3 si 5 zile lucratoare."},
		{"Oferiti garantie?", "Toate panourile au garantie de productie de 25 de ani."},
		{"Pot plati la livrare?", "Da, plata ramburs este disponibila in Romania."},
	},
	"en": {
		{"How long does delivery take?", "Standard delivery takes 3-5 business days."},
		{"Do you offer a warranty?", "Every panel carries a 25-year performance warranty."},
		{"Can I pay on delivery?", "Yes, cash on delivery is available in Romania."},
	},
}

func faqsFor(locale string) []faq {
	if f, ok := faqTable[locale]; ok {
		return f
	}
	return faqTable[catalog.DefaultLocale]
}
