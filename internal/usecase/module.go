package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewOrderUseCase,
	NewProductUseCase,
	newPaymentUseCase,
	newReconcileUseCase,
)

type paymentParams struct {
	fx.In

	Orders   repository.OrderRepository
	Provider PaymentProvider
	Config   *config.Config
	Logger   *slog.Logger
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(p.Orders, p.Provider, PaymentOptions{
		Currency:  p.Config.Currency,
		Timeout:   p.Config.PaymentTimeout,
		PollGrace: p.Config.PaymentPollGrace,
	}, p.Logger)
}

type reconcileParams struct {
	fx.In

	Orders    repository.OrderRepository
	Inventory repository.InventoryLedger
	Verifier  NotificationVerifier
	Dedup     NotificationDeduper
	Events    EventPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newReconcileUseCase(p reconcileParams) *ReconcileUseCase {
	return NewReconcileUseCase(
		p.Orders,
		p.Inventory,
		p.Verifier,
		p.Dedup,
		p.Events,
		ReconcileOptions{ReleaseStockOnFailure: p.Config.ReleaseStockOnPaymentFailure},
		p.Logger,
	)
}
