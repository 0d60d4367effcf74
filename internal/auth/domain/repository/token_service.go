package repository

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService defines token generation and validation. Validation must fail
// on expired tokens: an expired identity is rejected outright, never treated
// as an anonymous caller.
type TokenService interface {
	GenerateToken(ctx context.Context, userID, email string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
