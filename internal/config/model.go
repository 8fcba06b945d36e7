// internal/config/model.go
//
// Typed configuration model for the storefront edge.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                              – dotenv values,
//   • `conf/global.yaml`                           – primary static file,
//   • `STOREFRONT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal and defaults; the app
// fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` runtime block is filled by the loader; YAML must not set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	SiteTitle       string        `koanf:"site_title"`
	CSRFKey         string        `koanf:"csrf_key"` // base64url, ≥32 bytes; vault: allowed
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

//
// I18n section
//

// I18n lists the UI locales and the localized route vocabulary.
//
// Segments maps a canonical route segment to its per-locale slug, e.g.
// `products: {ro: produse, en: products}`.
type I18n struct {
	DefaultLocale   string                       `koanf:"default_locale"   validate:"required"`
	BrowserFallback string                       `koanf:"browser_fallback" validate:"required"`
	Locales         []string                     `koanf:"locales"          validate:"required,min=1,dive,required"`
	Segments        map[string]map[string]string `koanf:"segments"`
}

//
// Region section
//

// Region configures storefront market detection.
type Region struct {
	Default      string        `koanf:"default"        validate:"required"`
	Supported    []string      `koanf:"supported"      validate:"required,min=1,dive,len=2"`
	CookieName   string        `koanf:"cookie_name"`
	GeoHeader    string        `koanf:"geo_header"`
	CookieMaxAge time.Duration `koanf:"cookie_max_age"`
	GeoIPDB      string        `koanf:"geoip_db"` // optional GeoLite2 file
}

//
// Paths section
//

// Paths holds the exclusion list and the cacheable carve-outs.
type Paths struct {
	Excluded  []string `koanf:"excluded"`
	Cacheable []string `koanf:"cacheable"`
}

//
// Cache section
//

// Cache configures the edge-cache layer and its backing store.
type Cache struct {
	Enabled             bool   `koanf:"enabled"`
	Backend             string `koanf:"backend"       validate:"omitempty,oneof=memory redis none"`
	BuildVersion        string `koanf:"build_version"`
	DraftCookie         string `koanf:"draft_cookie"`
	DefaultCacheControl string `koanf:"default_cache_control"`
	MemoryEntries       int    `koanf:"memory_entries" validate:"gte=0"`
	RedisAddr           string `koanf:"redis_addr"     validate:"required_if=Backend redis"`
	RedisPassword       string `koanf:"redis_password"`
	RedisDB             int    `koanf:"redis_db"`
	BackgroundWorkers   int64  `koanf:"background_workers" validate:"gte=0"`
	PurgeToken          string `koanf:"purge_token"`
}

//
// Database section
//

// Database is optional.  When DSN is empty the catalog comes from the YAML
// seed and the segment vocabulary is static.
type Database struct {
	DSN        string        `koanf:"dsn"`
	SegmentTTL time.Duration `koanf:"segment_ttl"`
}

//
// Catalog section
//

// Catalog points at the YAML product seed used without a database.
type Catalog struct {
	SeedFile string `koanf:"seed_file"`
}

//
// Telemetry section
//

// Telemetry enables OTLP tracing when Endpoint is non-empty.
type Telemetry struct {
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate" validate:"gte=0,lte=1"`
	ServiceName  string  `koanf:"service_name"`
}

//
// Runtime section (never loaded)
//

// Runtime is resolved by the loader.  `Root` is the repo root or the
// STOREFRONT_ROOT override so later code can build absolute file paths.
type Runtime struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	I18n      I18n      `koanf:"i18n"`
	Region    Region    `koanf:"region"`
	Paths     Paths     `koanf:"paths"`
	Cache     Cache     `koanf:"cache"`
	Database  Database  `koanf:"database"`
	Catalog   Catalog   `koanf:"catalog"`
	Telemetry Telemetry `koanf:"telemetry"`
	Runtime   Runtime   `koanf:"-"`
}
