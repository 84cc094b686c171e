package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	domainobs "github.com/fairyhunter13/smart-resume-matcher/internal/observability"
)

// unmatchedRoute labels requests chi could not route, so 404 scans cannot
// blow up label cardinality.
const unmatchedRoute = "unmatched"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP handler latency by route pattern and method.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"route", "method"})

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Requests currently being served.",
	})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Requests rejected by the per-user token bucket, by scope.",
	}, []string{"scope"})

	CircuitBreakerStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_status",
		Help: "Breaker state per upstream: 0 closed, 1 open, 2 half-open.",
	}, []string{"name"})
)

var initOnce sync.Once

// InitMetrics registers the HTTP and matcher collectors with the default
// registry. Only the first call registers.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPInFlight,
			RateLimitedTotal,
			CircuitBreakerStatus,
		)
		prometheus.MustRegister(domainobs.MatchCollectors()...)
	})
}

// HTTPMetricsMiddleware counts and times requests by chi route pattern.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPInFlight.Inc()
		defer HTTPInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// RecordRateLimited counts a request rejected in scope.
func RecordRateLimited(scope string) { RateLimitedTotal.WithLabelValues(scope).Inc() }

func recordBreakerState(name string, s CircuitBreakerState) {
	CircuitBreakerStatus.WithLabelValues(name).Set(float64(s))
}
