// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single request.  Storefront handlers
// push tags into the builder, then the base layout emits each slice.
//
// Features
// --------
//   - SetTitle, SetDescription – single-value tags (last call wins).
//   - Alternate                – one <link rel="alternate" hreflang> per
//     locale, plus x-default.
//   - Canonical                – <link rel="canonical">.
//   - Meta, Link               – arbitrary pre-escaped tags, deduplicated.
//   - JSONLD                   – raw JSON-LD wrapped in a script tag.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use, though pages normally fill it from
// a single goroutine.
type Builder struct {
	mu sync.Mutex

	title       string
	description string
	lang        string

	metas  []string
	links  []string
	jsonLD []string

	seen map[string]struct{}
}

// New returns an empty builder for a page in lang.
func New(lang string) *Builder {
	return &Builder{lang: lang, seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helpers
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// SetDescription overrides the meta description.
func (b *Builder) SetDescription(d string) {
	b.mu.Lock()
	b.description = d
	b.mu.Unlock()
}

// Lang is the value for <html lang>.
func (b *Builder) Lang() string { return b.lang }

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// ------------------------------------------------------------------
// Link helpers
// ------------------------------------------------------------------

// Alternate adds a hreflang link.  Use "x-default" for the fallback.
func (b *Builder) Alternate(hreflang, href string) {
	b.Link(`<link rel="alternate" hreflang="` + template.HTMLEscapeString(hreflang) +
		`" href="` + template.HTMLEscapeString(href) + `">`)
}

// Canonical adds the canonical link.
func (b *Builder) Canonical(href string) {
	b.Link(`<link rel="canonical" href="` + template.HTMLEscapeString(href) + `">`)
}

func (b *Builder) Meta(tag string)  { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)  { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) JSONLD(js string) { b.add("jsonld:"+js, &b.jsonLD, js) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from the layout
// ------------------------------------------------------------------

// Metas includes the description, when set, ahead of the free-form tags.
func (b *Builder) Metas() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := concat(b.metas)
	if b.description != "" {
		out = template.HTML(`<meta name="description" content="`+
			template.HTMLEscapeString(b.description)+`">`) + out
	}
	return out
}

func (b *Builder) Links() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return concat(b.links)
}

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

// concat joins pre-escaped tags without a separator.
func concat(sl []string) template.HTML {
	return template.HTML(strings.Join(sl, ""))
}
