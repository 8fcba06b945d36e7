package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type loggerKey struct{}

// TraceLogger stores a logger carrying trace_id and span_id in the request
// context when otelhttp started a valid span upstream.
func TraceLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				l := base.With(
					zap.String("trace_id", sc.TraceID().String()),
					zap.String("span_id", sc.SpanID().String()),
				)
				r = r.WithContext(context.WithValue(r.Context(), loggerKey{}, l))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logger returns the request logger, or zap.L() outside TraceLogger.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}
