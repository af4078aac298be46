package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic: checkout with stock
// reservation, owner-scoped reads, shipping edits and cancellation.
type OrderUseCase struct {
	products  repository.ProductRepository
	inventory repository.InventoryLedger
	orders    repository.OrderRepository
	events    EventPublisher
	logger    *slog.Logger

	newID func() string
	now   func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	products repository.ProductRepository,
	inventory repository.InventoryLedger,
	orders repository.OrderRepository,
	events EventPublisher,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		products:  products,
		inventory: inventory,
		orders:    orders,
		events:    events,
		logger:    logger,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create reserves one unit of every product and persists a pending order.
// Either every reservation is kept and the order exists, or none is.
func (u *OrderUseCase) Create(ctx context.Context, userID int64, productIDs []string, shippingAddress string) (*model.Order, error) {
	if err := ValidateProductIDs(productIDs); err != nil {
		return nil, err
	}
	address, err := NormalizeShippingAddress(shippingAddress)
	if err != nil {
		return nil, err
	}

	products := make([]*model.Product, 0, len(productIDs))
	for _, id := range productIDs {
		p, err := u.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
			}
			return nil, err
		}
		products = append(products, p)
	}

	reserved := make([]string, 0, len(products))
	items := make([]model.OrderItem, 0, len(products))
	total := decimal.Zero
	for _, p := range products {
		if _, err := u.inventory.Reserve(ctx, p.ID, 1); err != nil {
			u.release(ctx, reserved)
			if errors.Is(err, domainErrors.ErrOutOfStock) {
				return nil, fmt.Errorf("%w: product %s", domainErrors.ErrOutOfStock, p.ID)
			}
			return nil, err
		}
		reserved = append(reserved, p.ID)
		items = append(items, model.OrderItem{ProductID: p.ID, UnitPrice: p.Price})
		total = total.Add(p.Price)
	}

	now := u.now()
	order, err := u.orders.Create(ctx, &model.Order{
		ID:              u.newID(),
		UserID:          userID,
		Items:           items,
		TotalPrice:      total,
		Status:          model.OrderStatusPending,
		ShippingAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		u.release(ctx, reserved)
		return nil, err
	}

	u.publish(ctx, model.OrderEventCreated, order)
	return order, nil
}

// Get returns the order only if it belongs to userID.
func (u *OrderUseCase) Get(ctx context.Context, orderID string, userID int64) (*model.Order, error) {
	return u.orders.GetForUser(ctx, orderID, userID)
}

// List returns the user's orders newest first.
func (u *OrderUseCase) List(ctx context.Context, userID int64, page, limit int) (*model.OrderPage, error) {
	page, limit = NormalizePage(page, limit)
	orders, total, err := u.orders.ListByUser(ctx, userID, limit, offsetFor(page, limit))
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return &model.OrderPage{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

// Update applies owner edits. Status can only change through an explicit cancel.
func (u *OrderUseCase) Update(ctx context.Context, orderID string, userID int64, patch model.OrderPatch) (*model.Order, error) {
	if patch.Cancel {
		if patch.ShippingAddress != nil {
			return nil, fmt.Errorf("%w: cancel cannot be combined with other changes", domainErrors.ErrValidation)
		}
		return u.Cancel(ctx, orderID, userID)
	}
	if patch.ShippingAddress == nil {
		return u.Get(ctx, orderID, userID)
	}
	address, err := NormalizeShippingAddress(*patch.ShippingAddress)
	if err != nil {
		return nil, err
	}
	return u.orders.UpdateShippingAddress(ctx, orderID, userID, address)
}

// Cancel moves a pending order to cancelled and returns its stock to the pool.
func (u *OrderUseCase) Cancel(ctx context.Context, orderID string, userID int64) (*model.Order, error) {
	order, err := u.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidState, order.Status)
	}

	updated, applied, err := u.orders.TransitionStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: order is no longer pending", domainErrors.ErrInvalidState)
	}

	u.release(ctx, order.ProductIDs())
	u.publish(ctx, model.OrderEventCancelled, updated)
	return updated, nil
}

// release returns one unit per product. It runs detached from the caller's
// cancellation so an aborted request still unwinds its reservations.
func (u *OrderUseCase) release(ctx context.Context, productIDs []string) {
	releaseStock(ctx, u.inventory, u.logger, productIDs)
}

func (u *OrderUseCase) publish(ctx context.Context, eventType model.OrderEventType, order *model.Order) {
	publishEvent(ctx, u.events, u.logger, eventType, order)
}

func releaseStock(ctx context.Context, inventory repository.InventoryLedger, logger *slog.Logger, productIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range productIDs {
		_, err := inventory.Release(ctx, id, 1)
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			logger.Info("product left the catalog, stock not returned", slog.String("product_id", id))
		case err != nil:
			logger.Error("release stock failed", slog.String("product_id", id), slog.String("error", err.Error()))
		}
	}
}

func publishEvent(ctx context.Context, events EventPublisher, logger *slog.Logger, eventType model.OrderEventType, order *model.Order) {
	if events == nil || order == nil {
		return
	}
	if err := events.Publish(context.WithoutCancel(ctx), model.NewOrderEvent(eventType, order)); err != nil {
		logger.Warn("publish order event failed",
			slog.String("event", string(eventType)),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
