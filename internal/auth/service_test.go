package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/hkb-commerce/storefront-backend/pkg/auth"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/security"
)

func testAuthConfig(t *testing.T, apiKey string) config.AdminAuthConfig {
	t.Helper()

	hash, err := security.Hash(apiKey)
	require.NoError(t, err)
	return config.AdminAuthConfig{
		APIKeyHash:    hash,
		JWTSecret:     "test-secret",
		JWTIssuer:     "storefront-backend",
		TokenLifetime: time.Hour,
	}
}

func TestExchangeAPIKey(t *testing.T) {
	svc, err := NewService(testAuthConfig(t, "admin-key"))
	require.NoError(t, err)

	result, err := svc.ExchangeAPIKey(context.Background(), "admin-key")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	claims, err := svc.ParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pkgauth.RoleAdmin, claims.Role)
}

func TestExchangeAPIKeyRejectsWrongKey(t *testing.T) {
	svc, err := NewService(testAuthConfig(t, "admin-key"))
	require.NoError(t, err)

	_, err = svc.ExchangeAPIKey(context.Background(), "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresConfig(t *testing.T) {
	_, err := NewService(config.AdminAuthConfig{})
	require.Error(t, err)
}
