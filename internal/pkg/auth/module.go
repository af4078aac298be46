package auth

import (
	"github.com/polkiloo/storefront/internal/config"
	"go.uber.org/fx"
)

// Module provides password hashing and session tokens via fx.
var Module = fx.Provide(
	newPasswordHasher,
	newTokenStrategy,
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

func newTokenStrategy(cfg *config.Config) Strategy {
	return NewHMACStrategy(cfg.JWTSecret, Options{TTL: cfg.SessionTTL, Issuer: cfg.ServiceName})
}
