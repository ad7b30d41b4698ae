package middleware

import (
	"net/http"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Recoverer turns handler panics into 500 responses instead of dropped
// connections.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				responses.WriteError(w, r, pkgerrors.Newf(pkgerrors.CodeInternal, "panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
