package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

// RateLimit applies a per-client fixed-window limit on the wrapped routes.
// A redis outage fails open; dropping checkout traffic costs more than a
// brief limit gap.
func RateLimit(client *redis.Client, scope string, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := clientIP(r)

			allowed, err := client.FixedWindowAllow(r.Context(), scope, subject, perMinute, time.Minute)
			if err != nil {
				logger.FromContext(r.Context()).Error(err, "rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(w, r, pkgerrors.New(pkgerrors.CodeRateLimited, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
