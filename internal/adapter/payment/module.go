package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the payment provider client and notification verifier to fx graph.
var Module = fx.Provide(newClient, newVerifier)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.PaymentProviderAddress, p.Config.PaymentSecretKey, p.Logger)
}

func newVerifier(cfg *config.Config) *SignatureVerifier {
	return NewSignatureVerifier(cfg.WebhookSecret, cfg.WebhookTolerance)
}
