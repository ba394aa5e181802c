package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics observes request latency labelled by the matched chi route pattern.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			m.Observe(r.Method, route, rec.status, time.Since(start))
		})
	}
}
