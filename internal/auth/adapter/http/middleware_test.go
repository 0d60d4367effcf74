package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmark-sync/internal/auth/domain/repository"
	"bookmark-sync/internal/shared/contextkeys"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenService validates a single known token.
type fakeTokenService struct {
	valid  string
	userID string
}

func (f *fakeTokenService) GenerateToken(ctx context.Context, userID, email string) (string, error) {
	return f.valid, nil
}

func (f *fakeTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	if tokenString != f.valid {
		return nil, errors.New("token is invalid")
	}
	return &repository.Claims{UserID: f.userID, Email: "user@example.com"}, nil
}

func protectedApp(tokens repository.TokenService) *fiber.App {
	app := fiber.New()
	m := NewAuthMiddleware(tokens, "bm_auth_token")
	app.Get("/protected", m.Protect(), func(c *fiber.Ctx) error {
		userID, _ := c.UserContext().Value(contextkeys.UserIDKey).(string)
		return c.JSON(fiber.Map{"userId": userID})
	})
	return app
}

func TestProtect_ValidBearerToken(t *testing.T) {
	app := protectedApp(&fakeTokenService{valid: "good-token", userID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtect_MissingTokenIsUnauthorized(t *testing.T) {
	app := protectedApp(&fakeTokenService{valid: "good-token", userID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtect_InvalidTokenIsUnauthorized(t *testing.T) {
	app := protectedApp(&fakeTokenService{valid: "good-token", userID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
		"an expired or invalid token must fail, not fall back to anonymous")
}

func TestProtect_TokenFromCookie(t *testing.T) {
	app := protectedApp(&fakeTokenService{valid: "good-token", userID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "bm_auth_token", Value: "good-token"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtect_TokenFromQueryParameter(t *testing.T) {
	// WebSocket clients cannot set headers; the token travels as a query
	// parameter instead.
	app := protectedApp(&fakeTokenService{valid: "good-token", userID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/protected?token=good-token", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
