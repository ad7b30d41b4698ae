package auth

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT payload minted for admin API access.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
