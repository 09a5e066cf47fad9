// Package middleware holds the HTTP middleware shared by the recommender and
// analytics servers: request ids, Prometheus metrics, timeouts, CORS and
// per-client rate limiting.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ravindradesineni/Movie-recommendation/pkg/metrics"
)

// Metrics records request count by status, latency and in-flight requests,
// labelled by normalized path.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)

			m.HTTPRequestsTotal.WithLabelValues(
				r.Method,
				path,
				strconv.Itoa(sw.status),
			).Inc()

			m.HTTPRequestDuration.WithLabelValues(
				r.Method,
				path,
			).Observe(duration)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wrote {
		sw.status, sw.wrote = code, true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wrote = true
	return sw.ResponseWriter.Write(b)
}

// knownPaths are the fixed routes served by the recommender and analytics
// commands. Anything else is reported as "other" to bound label cardinality.
var knownPaths = map[string]bool{
	"/api/v1/titles":              true,
	"/api/v1/movies/similar":      true,
	"/api/v1/cache/stats":         true,
	"/api/v1/cache/invalidate":    true,
	"/api/v1/analytics":           true,
	"/api/v1/analytics/snapshots": true,
	"/health/live":                true,
	"/health/ready":               true,
}

// normalizePath maps a request path to a metric label: user ids collapse
// to {id} and unknown paths to "other".
func normalizePath(path string) string {
	const usersPrefix = "/api/v1/users/"
	if rest, ok := strings.CutPrefix(path, usersPrefix); ok {
		if i := strings.IndexByte(rest, '/'); i >= 0 && rest[i:] == "/recommendations" {
			return usersPrefix + "{id}/recommendations"
		}
		return "other"
	}
	if knownPaths[path] {
		return path
	}
	return "other"
}
