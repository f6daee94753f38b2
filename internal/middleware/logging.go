package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mkarel/boostgate/internal/logging"
)

// HTTPLogging creates a middleware that logs each request and its response
// at debug level. Sensitive headers are masked before they reach the log.
func HTTPLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.Enabled(r.Context(), slog.LevelDebug) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := GetRequestID(r.Context())

			logger.Debug("HTTP Request",
				"request_id", requestID,
				"method", r.Method,
				"url", r.URL.Path,
				"query_params", r.URL.RawQuery,
				"headers", maskHeaders(r.Header),
			)

			rec := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			start := time.Now()
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			logger.Debug("HTTP Response",
				"request_id", requestID,
				"method", r.Method,
				"url", r.URL.Path,
				"status_code", rec.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// maskHeaders masks sensitive header values
func maskHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for k, v := range headers {
		if len(v) > 0 {
			result[k] = logging.MaskHeader(k, v[0])
		}
	}
	return result
}

// responseRecorder captures response details for logging.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code and writes it to the response.
func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
