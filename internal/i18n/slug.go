// internal/i18n/slug.go
//
// Slug helper for product handles and localized route segments.
//
// Rules (Slug)
// ------------
// 1. Fold Romanian diacritics to ASCII (ă, â → a, î → i, ș, ş → s, ț, ţ → t).
// 2. Lower-case everything.
// 3. Convert any run of non-[a-z0-9] characters to one "-".
// 4. Trim leading and trailing "-".
// 5. If the result is empty, return "item".
//
// Notes
// -----
// • Slugs are max 100 bytes; the cut never leaves a trailing dash.

package i18n

import "strings"

var fold = strings.NewReplacer(
	"ă", "a", "Ă", "a", "â", "a", "Â", "a", "î", "i", "Î", "i",
	"ș", "s", "Ș", "s", "ş", "s", "Ş", "s",
	"ț", "t", "Ț", "t", "ţ", "t", "Ţ", "t",
)

// Slug converts title to lower-kebab ASCII.
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(fold.Replace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}
