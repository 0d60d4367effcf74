package security

import (
	"context"
	"testing"
	"time"

	"bookmark-sync/internal/auth/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:   "test-secret-key-for-unit-tests-only",
		JWTIssuer:      "bookmark-sync-test",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestJWTokenService_GenerateAndValidate(t *testing.T) {
	svc, err := NewJWTokenService(testConfig())
	require.NoError(t, err)

	token, err := svc.GenerateToken(context.Background(), "user-1", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "bookmark-sync-test", claims.Issuer)
}

func TestJWTokenService_ExpiredTokenIsRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = 1 * time.Nanosecond
	svc, err := NewJWTokenService(cfg)
	require.NoError(t, err)

	token, err := svc.GenerateToken(context.Background(), "user-1", "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	// Expiry is a hard failure; the caller is never treated as anonymous.
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTokenService_WrongSecretIsRejected(t *testing.T) {
	svc, err := NewJWTokenService(testConfig())
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecretKey = "a-completely-different-secret-key"
	otherSvc, err := NewJWTokenService(other)
	require.NoError(t, err)

	token, err := otherSvc.GenerateToken(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTokenService_MalformedTokenIsRejected(t *testing.T) {
	svc, err := NewJWTokenService(testConfig())
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestNewJWTokenService_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty secret", func(c *config.Config) { c.JWTSecretKey = "" }},
		{"empty issuer", func(c *config.Config) { c.JWTIssuer = "" }},
		{"zero ttl", func(c *config.Config) { c.AccessTokenTTL = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			_, err := NewJWTokenService(cfg)
			require.Error(t, err)
		})
	}
}
