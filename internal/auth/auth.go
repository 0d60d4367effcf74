// Package auth provides token validation for the bookmark service. It does
// not manage users or issue credentials; tokens are minted by the identity
// provider that shares the signing secret.
package auth

import (
	"fmt"

	httpadapter "bookmark-sync/internal/auth/adapter/http"
	"bookmark-sync/internal/auth/adapter/security"
	"bookmark-sync/internal/auth/config"
	"bookmark-sync/internal/auth/domain/repository"
	"bookmark-sync/internal/shared/logger"
)

// Module bundles the auth components.
type Module struct {
	Config     *config.Config
	Tokens     repository.TokenService
	Middleware *httpadapter.AuthMiddleware
	Logger     logger.Logger
}

// NewModule constructs the auth module from configuration.
func NewModule(cfg *config.Config, log logger.Logger) (*Module, error) {
	tokens, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	return &Module{
		Config:     cfg,
		Tokens:     tokens,
		Middleware: httpadapter.NewAuthMiddleware(tokens, cfg.CookieName),
		Logger:     log.WithComponent("auth"),
	}, nil
}
