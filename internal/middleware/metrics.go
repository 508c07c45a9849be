package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"netinv.sh/internal/metrics"
)

// NewMetricsMiddleware records request count, latency and response size
func NewMetricsMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			metrics.RecordHTTPRequest(
				serviceName,
				r.Method,
				routeLabel(r),
				strconv.Itoa(wrapped.StatusCode()),
				time.Since(start).Seconds(),
				float64(wrapped.BytesWritten()),
			)
		})
	}
}

// routeLabel prefers the matched mux template so label cardinality stays
// bounded; unmatched paths are collapsed.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return cleanPath(r.URL.Path)
}

// cleanPath removes IDs and dynamic segments from paths for metric labels
func cleanPath(path string) string {
	parts := strings.Split(path, "/")
	cleaned := make([]string, len(parts))

	for i, part := range parts {
		// Replace UUIDs with placeholder
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			cleaned[i] = "{id}"
			continue
		}

		// Replace numeric IDs with placeholder
		if _, err := strconv.Atoi(part); err == nil && part != "" {
			cleaned[i] = "{id}"
			continue
		}

		cleaned[i] = part
	}

	return strings.Join(cleaned, "/")
}
