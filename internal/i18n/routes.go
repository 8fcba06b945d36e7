package i18n

// Vocabulary maps canonical route segments to per-locale slugs and back.
// It is immutable; Merge returns a new value.
type Vocabulary struct {
	forward map[string]map[string]string // canonical → locale → localized
	reverse map[string]string            // localized → canonical
}

// NewVocabulary copies table, e.g. {"products": {"ro": "produse", "en": "products"}}.
func NewVocabulary(table map[string]map[string]string) *Vocabulary {
	v := &Vocabulary{
		forward: make(map[string]map[string]string, len(table)),
		reverse: make(map[string]string, len(table)*2),
	}
	v.add(table)
	return v
}

func (v *Vocabulary) add(table map[string]map[string]string) {
	for canonical, byLocale := range table {
		m, ok := v.forward[canonical]
		if !ok {
			m = make(map[string]string, len(byLocale))
			v.forward[canonical] = m
		}
		for locale, localized := range byLocale {
			if localized == "" {
				continue
			}
			m[locale] = localized
			v.reverse[localized] = canonical
		}
	}
}

// Merge returns a vocabulary with extra layered over v.
func (v *Vocabulary) Merge(extra map[string]map[string]string) *Vocabulary {
	out := NewVocabulary(v.forward)
	out.add(extra)
	return out
}

// Vocabulary lets a static *Vocabulary act as a VocabularySource.
func (v *Vocabulary) Vocabulary() *Vocabulary { return v }

// Canonicalize maps a localized slug to its canonical segment.  Unknown
// segments are returned unchanged.
func (v *Vocabulary) Canonicalize(localized string) string {
	if c, ok := v.reverse[localized]; ok {
		return c
	}
	return localized
}

// Localize maps a canonical segment to its slug in locale.  Unknown
// segments or locales are returned unchanged.
func (v *Vocabulary) Localize(canonical, locale string) string {
	if s, ok := v.forward[canonical][locale]; ok {
		return s
	}
	return canonical
}

// Len reports the number of canonical segments.
func (v *Vocabulary) Len() int { return len(v.forward) }

// VocabularySource yields the current vocabulary.  The routing package's
// DB-backed cache implements it; so does *Vocabulary.
type VocabularySource interface {
	Vocabulary() *Vocabulary
}
