// internal/config/defaults.go
//
// Storefront defaults.  Applied after unmarshal so an almost empty YAML
// file still yields the observed production behaviour: two locales, the
// sixteen supported markets, Cloudflare's geo header, and the one-year
// region cookie.

package config

import (
	"os"
	"time"
)

const (
	DefaultCacheControl = "public, max-age=0, s-maxage=31536000"
	DefaultCookieMaxAge = 365 * 24 * time.Hour
)

var (
	defaultLocales   = []string{"ro", "en"}
	defaultCountries = []string{
		"ro", "dk", "fr", "de", "es", "jp", "gb", "ca",
		"dz", "ar", "za", "mx", "my", "au", "nz", "br",
	}
	defaultExcluded = []string{
		"/api", "/images", "/icons", "/cdn-cgi", "/favicon.ico",
		"/favicon-inactive.ico", "/_astro", "/_image", "/_server-islands", "/cms",
	}
	defaultCacheable = []string{"/api/og"}
	defaultSegments  = map[string]map[string]string{
		"products":  {"ro": "produse", "en": "products"},
		"checkout":  {"ro": "finalizare", "en": "checkout"},
		"order":     {"ro": "comanda", "en": "order"},
		"confirmed": {"ro": "confirmata", "en": "confirmed"},
		"faqs":      {"ro": "intrebari", "en": "faqs"},
	}
)

// Defaults returns a Config carrying only default values.  Tests and tools
// that do not read conf/global.yaml start from here.
func Defaults() *Config {
	var c Config
	c.HTTP.ListenAddr = ":8080"
	c.Cache.Enabled = true
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.HTTP.SiteTitle == "" {
		c.HTTP.SiteTitle = "SolarEdge Supply"
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 20 * time.Second
	}

	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = "ro"
	}
	if c.I18n.BrowserFallback == "" {
		c.I18n.BrowserFallback = "en"
	}
	if len(c.I18n.Locales) == 0 {
		c.I18n.Locales = append([]string(nil), defaultLocales...)
	}
	if len(c.I18n.Segments) == 0 {
		c.I18n.Segments = make(map[string]map[string]string, len(defaultSegments))
		for k, v := range defaultSegments {
			m := make(map[string]string, len(v))
			for l, s := range v {
				m[l] = s
			}
			c.I18n.Segments[k] = m
		}
	}

	if c.Region.Default == "" {
		c.Region.Default = "ro"
	}
	if len(c.Region.Supported) == 0 {
		c.Region.Supported = append([]string(nil), defaultCountries...)
	}
	if c.Region.CookieName == "" {
		c.Region.CookieName = "region"
	}
	if c.Region.GeoHeader == "" {
		c.Region.GeoHeader = "cf-ipcountry"
	}
	if c.Region.CookieMaxAge <= 0 {
		c.Region.CookieMaxAge = DefaultCookieMaxAge
	}

	if c.Paths.Excluded == nil {
		c.Paths.Excluded = append([]string(nil), defaultExcluded...)
	}
	if c.Paths.Cacheable == nil {
		c.Paths.Cacheable = append([]string(nil), defaultCacheable...)
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	// BUILD_VERSION is injected by the deploy pipeline, not by operators.
	if v := os.Getenv("BUILD_VERSION"); v != "" {
		c.Cache.BuildVersion = v
	}
	if c.Cache.BuildVersion == "" {
		c.Cache.BuildVersion = "dev"
	}
	if c.Cache.DraftCookie == "" {
		c.Cache.DraftCookie = "sanity-draft-mode"
	}
	if c.Cache.DefaultCacheControl == "" {
		c.Cache.DefaultCacheControl = DefaultCacheControl
	}
	if c.Cache.MemoryEntries == 0 {
		c.Cache.MemoryEntries = 2048
	}
	if c.Cache.BackgroundWorkers == 0 {
		c.Cache.BackgroundWorkers = 64
	}

	if c.Database.SegmentTTL <= 0 {
		c.Database.SegmentTTL = 5 * time.Minute
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "storefront-edge"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1
	}
}
