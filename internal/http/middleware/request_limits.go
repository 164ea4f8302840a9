package middleware

import "net/http"

// DefaultMaxBodyBytes bounds request bodies on the auth endpoints.
// The largest legitimate payload is a registration form.
const DefaultMaxBodyBytes = 64 * 1024

// RequestSizeLimit creates middleware that limits the maximum request body size.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
