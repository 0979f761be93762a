package middleware

import (
	"net/http"

	"github.com/Harshitk-cp/medvalidate/internal/metrics"
)

// Metrics records request counts and latency per route pattern. Using the
// pattern instead of the raw path keeps label cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		done := metrics.RequestStarted(r.Method)

		next.ServeHTTP(rw, r)

		done(routePattern(r), rw.statusCode)
	})
}
