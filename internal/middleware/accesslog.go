// internal/middleware/accesslog.go
//
// One structured line per request.
//
// Context
// -------
// AccessLog wraps everything below the trace logger, so each line carries
// the trace id when tracing is on.  The cache field echoes the X-Cache
// response header.  Hits send none, so hits, bypasses, and redirects all log
// an empty value; the edge-cache metrics tell them apart.
//
// Notes
// -----
// • Request ids come from X-Request-Id when a proxy supplied one, else a
//   fresh UUID, and are echoed on the response.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/requestinfo"
)

type requestIDKey struct{}

// RequestID returns the id AccessLog assigned, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AccessLog logs method, path, status, size, latency, and cache outcome.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-Id")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		// Path is captured before the locale stage rewrites it.
		method, path := r.Method, r.URL.Path
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("id", id),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("cache", ww.Header().Get("X-Cache")),
		}
		if info := requestinfo.FromContext(r.Context()); info != nil {
			fields = append(fields,
				zap.String("country", info.Geo.CountryISO),
				zap.String("browser", info.UA.Browser),
				zap.Bool("bot", info.UA.IsBot))
		}
		Logger(r.Context()).Info("request", fields...)
	})
}
