package i18n

import "strings"

// Localizer builds and parses locale-prefixed paths.  Only the first
// segment after the locale is translated; deeper segments are handles and
// ids and stay as they are.
type Localizer struct {
	Set   *Set
	Vocab VocabularySource
}

// Segments splits a path on "/" and drops empty parts.
func Segments(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// passThrough reports hrefs that must never be prefixed.
func passThrough(href string) bool {
	return strings.HasPrefix(href, "http://") ||
		strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "#")
}

// LocalizedPath turns "/products/x" into "/ro/produse/x".
func (l Localizer) LocalizedPath(locale, canonicalPath string) string {
	if passThrough(canonicalPath) {
		return canonicalPath
	}
	segs := Segments(canonicalPath)
	if len(segs) > 0 {
		segs[0] = l.Vocab.Vocabulary().Localize(segs[0], locale)
	}
	return "/" + locale + "/" + strings.Join(segs, "/")
}

// ParseLocalizedPath turns "/ro/produse/x" into ("ro", "/products/x").  A
// missing locale segment yields the default locale.
func (l Localizer) ParseLocalizedPath(localizedPath string) (locale, canonicalPath string) {
	segs := Segments(localizedPath)
	locale = l.Set.Default
	if len(segs) > 0 {
		locale = segs[0]
		segs = segs[1:]
	}
	if len(segs) == 0 {
		return locale, "/"
	}
	segs[0] = l.Vocab.Vocabulary().Canonicalize(segs[0])
	return locale, "/" + strings.Join(segs, "/")
}

// LocalizedHref localizes href unless it is external, a fragment, or
// already carries a supported locale prefix.
func (l Localizer) LocalizedHref(locale, href string) string {
	if passThrough(href) {
		return href
	}
	for _, loc := range l.Set.Locales {
		if strings.HasPrefix(href, "/"+loc+"/") {
			return href
		}
	}
	return l.LocalizedPath(locale, href)
}
