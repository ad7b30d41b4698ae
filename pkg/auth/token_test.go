package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndParseAccessToken(t *testing.T) {
	secret := []byte("test-secret")

	raw, err := MintAccessToken(secret, "storefront-backend", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(secret, "storefront-backend", raw)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "storefront-backend", claims.Issuer)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	raw, err := MintAccessToken([]byte("one"), "storefront-backend", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken([]byte("two"), "storefront-backend", raw)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	raw, err := MintAccessToken([]byte("secret"), "storefront-backend", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken([]byte("secret"), "storefront-backend", raw)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	raw, err := MintAccessToken([]byte("secret"), "someone-else", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken([]byte("secret"), "storefront-backend", raw)
	require.Error(t, err)
}
