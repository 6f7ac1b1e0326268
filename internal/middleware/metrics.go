package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/metrics"
)

// Metrics records request count by method, route, and status code.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		metrics.RequestsTotal.WithLabelValues(r.Method, routeLabel(r.URL.Path), strconv.Itoa(sw.status)).Inc()
	})
}

// routeLabel keeps the path label bounded: anything outside /api/ and
// /metrics collapses to "other".
func routeLabel(path string) string {
	if path == "/metrics" || strings.HasPrefix(path, "/api/") {
		return path
	}
	return "other"
}
