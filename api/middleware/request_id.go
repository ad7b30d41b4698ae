package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/logger"
)

// RequestIDHeader is echoed back so callers can correlate logs.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an id and attaches a tagged logger to the
// context.
func RequestID(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			log := base.WithRequestID(requestID)
			next.ServeHTTP(w, r.WithContext(log.Attach(r.Context())))
		})
	}
}
