package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/wildpark/wildpark/pkg/contextkeys"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
)

// Recovery is the global fallthrough handler: any panic is logged with full
// request context to the SYSTEM category and converted to the standard 500
// envelope. Stack traces reach the client in development mode only.
func Recovery(logger *logging.Service, development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					fields := logging.Fields{
						"panic":      fmt.Sprintf("%v", recovered),
						"method":     r.Method,
						"path":       r.URL.Path,
						"remote":     r.RemoteAddr,
						"request_id": contextkeys.GetRequestID(r.Context()),
						"stack":      string(debug.Stack()),
					}
					if user := UserFrom(r); user != nil {
						fields["user_id"] = user.ID.Hex()
					}
					logger.Error(logging.CategorySystem, "panic recovered", fields)

					err := fmt.Errorf("panic: %v", recovered)
					httputil.WriteAppError(w, r, err, development)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS adds CORS headers for the configured origins and answers preflight.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed["*"] || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
