package auth

import (
	"context"
	"time"

	"github.com/hkb-commerce/storefront-backend/pkg/auth"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/security"
)

// TokenResult is the minted access token plus its lifetime.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service exchanges the admin API key for a short-lived JWT.
type Service struct {
	cfg config.AdminAuthConfig
}

// NewService validates the admin auth config.
func NewService(cfg config.AdminAuthConfig) (*Service, error) {
	if cfg.APIKeyHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin auth requires an api key hash")
	}
	if cfg.JWTSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin auth requires a jwt secret")
	}
	return &Service{cfg: cfg}, nil
}

// ExchangeAPIKey verifies the submitted key and mints an admin token. The
// same UNAUTHORIZED comes back for a wrong key and a malformed hash so
// callers learn nothing about which failed.
func (s *Service) ExchangeAPIKey(ctx context.Context, apiKey string) (*TokenResult, error) {
	ok, err := security.Verify(apiKey, s.cfg.APIKeyHash)
	if err != nil {
		logger.FromContext(ctx).Error(err, "verify admin api key")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
	}

	token, err := auth.MintAccessToken([]byte(s.cfg.JWTSecret), s.cfg.JWTIssuer, auth.RoleAdmin, s.cfg.TokenLifetime)
	if err != nil {
		return nil, err
	}
	return &TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenLifetime / time.Second),
	}, nil
}

// ParseToken validates a bearer token for the auth middleware.
func (s *Service) ParseToken(raw string) (*auth.AccessClaims, error) {
	return auth.ParseAccessToken([]byte(s.cfg.JWTSecret), s.cfg.JWTIssuer, raw)
}
