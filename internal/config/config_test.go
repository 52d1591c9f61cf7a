package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"casino_platform/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	require.Equal(t, time.Minute, cfg.ClaimExpiryInterval)
	require.Equal(t, 5*time.Minute, cfg.GameCacheTTL)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("TOKEN_EXPIRY", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CLAIM_EXPIRY_INTERVAL", "30s")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "super-secret", cfg.JWTSecret)
	require.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, 30*time.Second, cfg.ClaimExpiryInterval)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "not-a-duration")

	_, err := config.Load()
	require.Error(t, err)
}
