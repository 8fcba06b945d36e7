// Package i18n owns the storefront's locales and the localized URL
// vocabulary.  Nothing here touches HTTP; the routing package turns these
// tables into middleware.
package i18n

import (
	"slices"
	"strings"
)

// Locale titles shown by the language switcher.
var titles = map[string]string{
	"ro": "Romana",
	"en": "English",
}

// Title returns the display name of a locale, or the code itself.
func Title(locale string) string {
	if t, ok := titles[locale]; ok {
		return t
	}
	return strings.ToUpper(locale)
}

// Set is the closed list of UI locales.
type Set struct {
	Default  string   // prefix used when a path lacks a locale
	Fallback string   // root redirect target when Accept-Language has no match
	Locales  []string // in detection priority order
}

// NewSet lower-cases every code.
func NewSet(def, fallback string, locales []string) *Set {
	ls := make([]string, 0, len(locales))
	for _, l := range locales {
		ls = append(ls, strings.ToLower(l))
	}
	return &Set{
		Default:  strings.ToLower(def),
		Fallback: strings.ToLower(fallback),
		Locales:  ls,
	}
}

// Supported reports whether l is one of the configured locales.  l must
// already be lower-case.
func (s *Set) Supported(l string) bool {
	return slices.Contains(s.Locales, l)
}

// FromAcceptLanguage picks the root-redirect locale.  The header is matched
// by plain substring, in locale priority order, so "ro-RO,ro;q=0.9" and
// "en-US,ro;q=0.5" both select "ro" when ro is listed first.
func (s *Set) FromAcceptLanguage(header string) string {
	for _, l := range s.Locales {
		if l == s.Fallback {
			continue
		}
		if strings.Contains(header, l) {
			return l
		}
	}
	return s.Fallback
}
