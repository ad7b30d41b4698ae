package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// RoleAdmin is the only role the read API mints today.
const RoleAdmin = "admin"

// MintAccessToken signs an HS256 access token for the given role.
func MintAccessToken(secret []byte, issuer, role string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   role,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeInternal, "sign access token")
	}
	return signed, nil
}

// ParseAccessToken validates signature, expiry, and issuer.
func ParseAccessToken(secret []byte, issuer, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeUnauthorized, "parse access token")
	}
	if !token.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	return claims, nil
}
