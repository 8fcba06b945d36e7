// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree and applies defaults.  Any tag mismatch
// or validation error aborts startup, ensuring the binary never runs with
// partial, malformed, or missing configuration.
//
// Besides the tag rules, two cross-field checks live here: the default
// locale must be one of the supported locales, and the default region must
// be on the allow-list.  Neither is expressible as a struct tag.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	if !slices.Contains(c.I18n.Locales, c.I18n.DefaultLocale) {
		return fmt.Errorf("i18n.default_locale %q not in i18n.locales", c.I18n.DefaultLocale)
	}
	if !slices.Contains(c.I18n.Locales, c.I18n.BrowserFallback) {
		return fmt.Errorf("i18n.browser_fallback %q not in i18n.locales", c.I18n.BrowserFallback)
	}
	if !slices.Contains(c.Region.Supported, c.Region.Default) {
		return fmt.Errorf("region.default %q not in region.supported", c.Region.Default)
	}
	return nil
}
