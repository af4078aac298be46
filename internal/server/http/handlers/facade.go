package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, productIDs []string, address string) (*model.Order, error)
	Order(ctx context.Context, userID int64, orderID string) (*model.Order, error)
	Orders(ctx context.Context, userID int64, page, limit int) (*model.OrderPage, error)
	UpdateOrder(ctx context.Context, userID int64, orderID string, patch model.OrderPatch) (*model.Order, error)
	CancelOrder(ctx context.Context, userID int64, orderID string) (*model.Order, error)
}

// PaymentFacade covers intent creation and provider notifications.
type PaymentFacade interface {
	CreatePaymentIntent(ctx context.Context, userID int64, orderID string) (*model.PaymentHandle, error)
	HandlePaymentNotification(ctx context.Context, payload []byte, signature string) error
}

// ProductFacade provides catalog operations.
type ProductFacade interface {
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	Product(ctx context.Context, id string) (*model.Product, error)
	Products(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// HealthFacade reports storage reachability.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	ProductFacade
	HealthFacade
}
