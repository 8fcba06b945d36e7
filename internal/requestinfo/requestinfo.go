//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, client IP, GeoLite2 country, and timestamp).
//  These structs are inert.  They contain no pointers to database
//  handles or large buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties used by the access log.
type UA struct {
	Browser string // "Chrome", "Firefox", "Safari", etc.
	OS      string // "macOS", "Windows", "Android", "iOS", etc.
	Device  string // "Desktop", "Phone", "Tablet", "TV", ...
	IsBot   bool   // crawler signature matched
}

// Geo holds IP-based geolocation hints.  CountryISO is lower-case to match
// the storefront's region codes, and empty when the DB has no match.
type Geo struct {
	IP         net.IP
	CountryISO string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// countryReader abstracts *geoip2.Reader for tests.
type countryReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
}

// geoReader is a process-wide MaxMind handle.  It is safe for concurrent
// reads, which is all we ever perform.  Nil means "no geo DB".
var geoReader atomic.Pointer[countryReaderBox]

type countryReaderBox struct{ r countryReader }

// InitGeo opens a GeoLite2 Country or City database.  An empty path is a
// no-op; geo fields then stay empty.
func InitGeo(dbPath string) (func() error, error) {
	if dbPath == "" {
		return func() error { return nil }, nil
	}
	rd, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	geoReader.Store(&countryReaderBox{r: rd})
	return func() error {
		geoReader.Store(nil)
		return rd.Close()
	}, nil
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// WithInfo attaches info to ctx.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the pointer previously stored by Enrich.  It returns
// nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}
	return UA{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      osName,
		Device:  deviceTypeToString(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

// deviceTypeToString maps uasurfer.DeviceType to a user-friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	box := geoReader.Load()
	if box == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := box.r.Country(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{IP: ip, CountryISO: strings.ToLower(rec.Country.IsoCode)}
}
