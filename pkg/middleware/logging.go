package middleware

import (
	"net/http"
	"time"

	"github.com/wildpark/wildpark/pkg/contextkeys"
	"github.com/wildpark/wildpark/pkg/logging"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// APILogging tees every request into the API log category. 4xx map to WARN
// and 5xx to ERROR so they always reach the file sink.
func APILogging(logger *logging.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := logging.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     wrapped.statusCode,
				"duration":   time.Since(start).String(),
				"request_id": contextkeys.GetRequestID(r.Context()),
			}
			if user := UserFrom(r); user != nil {
				fields["user_id"] = user.ID.Hex()
			}

			message := r.Method + " " + r.URL.Path
			switch {
			case wrapped.statusCode >= 500:
				logger.Error(logging.CategoryAPI, message, fields)
			case wrapped.statusCode >= 400:
				logger.Warn(logging.CategoryAPI, message, fields)
			default:
				logger.Info(logging.CategoryAPI, message, fields)
			}
		})
	}
}
