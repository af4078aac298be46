package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn func(context.Context, int64, []string, string) (*model.Order, error)
	GetFn    func(context.Context, int64, string) (*model.Order, error)
	ListFn   func(context.Context, int64, int, int) (*model.OrderPage, error)
	UpdateFn func(context.Context, int64, string, model.OrderPatch) (*model.Order, error)
	CancelFn func(context.Context, int64, string) (*model.Order, error)
}

// CreateOrder delegates to provided function or returns a pending order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, productIDs []string, address string) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, productIDs, address)
	}
	items := make([]model.OrderItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, model.OrderItem{ProductID: id, UnitPrice: decimal.NewFromInt(1)})
	}
	return &model.Order{
		ID:              "order-1",
		UserID:          userID,
		Items:           items,
		TotalPrice:      decimal.NewFromInt(int64(len(items))),
		Status:          model.OrderStatusPending,
		ShippingAddress: address,
	}, nil
}

// Order returns configured order.
func (s OrderFacadeStub) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusPending}, nil
}

// Orders returns predefined page for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID int64, page, limit int) (*model.OrderPage, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID, page, limit)
	}
	return &model.OrderPage{Orders: []model.Order{{ID: "order-1", UserID: userID}}, Total: 1, Page: page, Limit: limit}, nil
}

// UpdateOrder applies configured update handler.
func (s OrderFacadeStub) UpdateOrder(ctx context.Context, userID int64, orderID string, patch model.OrderPatch) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, userID, orderID, patch)
	}
	order := &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusPending}
	if patch.ShippingAddress != nil {
		order.ShippingAddress = *patch.ShippingAddress
	}
	return order, nil
}

// CancelOrder returns cancelled order by default.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusCancelled}, nil
}

// PaymentFacadeStub simulates payment endpoints.
type PaymentFacadeStub struct {
	IntentFn       func(context.Context, int64, string) (*model.PaymentHandle, error)
	NotificationFn func(context.Context, []byte, string) error
}

// CreatePaymentIntent returns a client handle for the order.
func (s PaymentFacadeStub) CreatePaymentIntent(ctx context.Context, userID int64, orderID string) (*model.PaymentHandle, error) {
	if s.IntentFn != nil {
		return s.IntentFn(ctx, userID, orderID)
	}
	return &model.PaymentHandle{ClientHandle: "secret_" + orderID, OrderID: orderID}, nil
}

// HandlePaymentNotification accepts notification unless overridden.
func (s PaymentFacadeStub) HandlePaymentNotification(ctx context.Context, payload []byte, signature string) error {
	if s.NotificationFn != nil {
		return s.NotificationFn(ctx, payload, signature)
	}
	return nil
}

// ProductFacadeStub simulates catalog endpoints.
type ProductFacadeStub struct {
	CreateFn func(context.Context, model.Product) (*model.Product, error)
	GetFn    func(context.Context, string) (*model.Product, error)
	ListFn   func(context.Context, model.ProductFilter) (*model.ProductPage, error)
	UpdateFn func(context.Context, string, model.ProductPatch) (*model.Product, error)
	DeleteFn func(context.Context, string) error
}

// CreateProduct echoes product with identifier assigned.
func (s ProductFacadeStub) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, p)
	}
	p.ID = "product-1"
	return &p, nil
}

// Product returns configured product.
func (s ProductFacadeStub) Product(ctx context.Context, id string) (*model.Product, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return &model.Product{ID: id, Name: "Widget", Price: decimal.RequireFromString("9.99"), StockQuantity: 3}, nil
}

// Products returns configured page.
func (s ProductFacadeStub) Products(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	return &model.ProductPage{Products: []model.Product{{ID: "product-1", Name: "Widget"}}, Total: 1, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdateProduct applies configured handler.
func (s ProductFacadeStub) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, patch)
	}
	return &model.Product{ID: id}, nil
}

// DeleteProduct applies configured handler.
func (s ProductFacadeStub) DeleteProduct(ctx context.Context, id string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// HealthFacadeStub reports configured health.
type HealthFacadeStub struct {
	Err error
}

// Ping returns configured error.
func (s HealthFacadeStub) Ping(ctx context.Context) error {
	return s.Err
}

// WorkerFacadeStub mimics worker interactions with the storefront facade.
type WorkerFacadeStub struct {
	Orders          [][]model.Order
	OrdersFn        func(context.Context, int) ([]model.Order, error)
	OutcomeFn       func(context.Context, model.Order) (*model.PaymentNotification, error)
	ApplyFn         func(context.Context, model.PaymentNotification) error
	Applied         []model.PaymentNotification
	mu              sync.Mutex
	ordersCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// OrdersAwaitingPayment returns batches from configured queue.
func (s *WorkerFacadeStub) OrdersAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// PaymentOutcome reports success for every order by default.
func (s *WorkerFacadeStub) PaymentOutcome(ctx context.Context, order model.Order) (*model.PaymentNotification, error) {
	if s.OutcomeFn != nil {
		return s.OutcomeFn(ctx, order)
	}
	ref := ""
	if order.PaymentReference != nil {
		ref = *order.PaymentReference
	}
	return &model.PaymentNotification{Kind: model.PaymentEventSucceeded, Reference: ref, OrderID: order.ID}, nil
}

// ApplyPaymentOutcome records applied notifications.
func (s *WorkerFacadeStub) ApplyPaymentOutcome(ctx context.Context, n model.PaymentNotification) error {
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Applied = append(s.Applied, n)
	return nil
}
