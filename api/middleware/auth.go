package middleware

import (
	"net/http"
	"strings"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	internalauth "github.com/hkb-commerce/storefront-backend/internal/auth"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// AdminAuth requires a valid admin bearer token on the wrapped routes.
func AdminAuth(authSvc *internalauth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				responses.WriteError(w, r, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			if _, err := authSvc.ParseToken(strings.TrimPrefix(header, "Bearer ")); err != nil {
				responses.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
