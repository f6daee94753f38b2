package metrics

import (
	"net/http"
	"regexp"
	"time"
)

// Path segments holding per-session or per-key identifiers are collapsed to
// keep label cardinality bounded. Session IDs come from the engine and are
// UUID-shaped; key IDs are UUIDs too.
var (
	numericSegment = regexp.MustCompile(`/(\d+)`)
	uuidSegment    = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// statusRecorder remembers the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

// Write implies a 200 when the handler never called WriteHeader.
func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// statusLabel maps a status code to its metric label.
func statusLabel(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return "UNKNOWN"
}

// Middleware records a request counter and latency histogram per method,
// normalized path, and status. A panic downstream is still recorded, as a
// 500 when the handler had not written a header yet.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		start := time.Now()

		defer func() {
			code := recorder.statusCode
			if code == 0 {
				code = http.StatusInternalServerError
			}

			path := normalizePath(r.URL.Path)
			status := statusLabel(code)

			RecordRequest(r.Method, path, status)
			RecordRequestDuration(r.Method, path, status, time.Since(start).Seconds())

			if rec := recover(); rec != nil {
				if !recorder.written {
					recorder.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(recorder, r)
	})
}

// normalizePath collapses identifier segments for use as a metric label.
// Examples:
//
//	/api/boost/7f3c.../status -> /api/boost/:id/status
//	/admin/keys/42 -> /admin/keys/:id
func normalizePath(path string) string {
	path = uuidSegment.ReplaceAllString(path, "/:id")
	return numericSegment.ReplaceAllString(path, "/:id")
}
