package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"casino_platform/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", 42, "highroller", auth.RolePlayer, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ParseToken("test-secret", token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.AccountID)
	require.Equal(t, "highroller", claims.Username)
	require.Equal(t, auth.RolePlayer, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", 42, "highroller", auth.RolePlayer, time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken("other-secret", token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", 42, "highroller", auth.RolePlayer, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken("test-secret", token)
	require.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	_, err := auth.ParseToken("test-secret", "not.a.token")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}
