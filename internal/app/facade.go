package app

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether the store of record is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point the HTTP layer and the payment
// poller use to reach business logic.
type StorefrontFacade struct {
	auth       *usecase.AuthUseCase
	orders     *usecase.OrderUseCase
	products   *usecase.ProductUseCase
	payments   *usecase.PaymentUseCase
	reconciler *usecase.ReconcileUseCase
	health     HealthChecker
}

func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	products *usecase.ProductUseCase,
	payments *usecase.PaymentUseCase,
	reconciler *usecase.ReconcileUseCase,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:       auth,
		orders:     orders,
		products:   products,
		payments:   payments,
		reconciler: reconciler,
		health:     health,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, login, password string) (string, error) {
	session, err := f.auth.Register(ctx, login, password)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	session, err := f.auth.Authenticate(ctx, login, password)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

func (f *StorefrontFacade) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return f.auth.Profile(ctx, userID)
}

func (f *StorefrontFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) CreateOrder(ctx context.Context, userID int64, productIDs []string, address string) (*model.Order, error) {
	return f.orders.Create(ctx, userID, productIDs, address)
}

func (f *StorefrontFacade) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	return f.orders.Get(ctx, orderID, userID)
}

func (f *StorefrontFacade) Orders(ctx context.Context, userID int64, page, limit int) (*model.OrderPage, error) {
	return f.orders.List(ctx, userID, page, limit)
}

func (f *StorefrontFacade) UpdateOrder(ctx context.Context, userID int64, orderID string, patch model.OrderPatch) (*model.Order, error) {
	return f.orders.Update(ctx, orderID, userID, patch)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	return f.orders.Cancel(ctx, orderID, userID)
}

func (f *StorefrontFacade) CreatePaymentIntent(ctx context.Context, userID int64, orderID string) (*model.PaymentHandle, error) {
	return f.payments.CreateIntent(ctx, userID, orderID)
}

// HandlePaymentNotification reconciles a provider callback. Only authenticity
// failures and storage errors are reported; every other outcome is an ack.
func (f *StorefrontFacade) HandlePaymentNotification(ctx context.Context, payload []byte, signature string) error {
	_, err := f.reconciler.HandleNotification(ctx, payload, signature)
	return err
}

func (f *StorefrontFacade) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	return f.products.Create(ctx, p)
}

func (f *StorefrontFacade) Product(ctx context.Context, id string) (*model.Product, error) {
	return f.products.Get(ctx, id)
}

func (f *StorefrontFacade) Products(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	return f.products.List(ctx, filter)
}

func (f *StorefrontFacade) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	return f.products.Update(ctx, id, patch)
}

func (f *StorefrontFacade) DeleteProduct(ctx context.Context, id string) error {
	return f.products.Delete(ctx, id)
}

func (f *StorefrontFacade) Ping(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *StorefrontFacade) OrdersAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return f.payments.AwaitingPayment(ctx, limit)
}

func (f *StorefrontFacade) PaymentOutcome(ctx context.Context, order model.Order) (*model.PaymentNotification, error) {
	return f.payments.Outcome(ctx, order)
}

func (f *StorefrontFacade) ApplyPaymentOutcome(ctx context.Context, n model.PaymentNotification) error {
	_, err := f.reconciler.Apply(ctx, n)
	return err
}
