package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceMiddleware wraps each request in an otelhttp server span. The span
// starts named after the raw path and is renamed to the chi route pattern
// once routing has run, keeping span names low-cardinality.
func TraceMiddleware(next http.Handler) http.Handler {
	renamed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		rc := chi.RouteContext(r.Context())
		if rc == nil || rc.RoutePattern() == "" {
			return
		}
		span := trace.SpanFromContext(r.Context())
		span.SetName(r.Method + " " + rc.RoutePattern())
		span.SetAttributes(attribute.String("http.route", rc.RoutePattern()))
	})
	return otelhttp.NewHandler(renamed, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
