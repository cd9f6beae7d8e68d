package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns a go-chi/cors handler for the given origins.
// With no origins configured, cross-origin requests get no CORS headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}

	// go-chi/cors treats an empty list as "*".
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
	}

	return cors.Handler(opts)
}
