package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"storefront-gateway/internal/observability"
)

// requestIDHeader carries the request id back to the client and accepts
// one from trusted upstream load balancers.
const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an id for log correlation.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set(requestIDHeader, id)
			ctx := observability.WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
