package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/platform/metrics"
)

// LatencyMiddleware records request latency per route pattern. Uses the chi
// route pattern rather than the raw path to keep metric cardinality bounded.
func LatencyMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.ObserveHTTPDuration(r.Method, route, time.Since(start).Seconds())
		})
	}
}
