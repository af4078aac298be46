package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository is the store of record for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetForUser(ctx context.Context, id string, userID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, int, error)
	UpdateShippingAddress(ctx context.Context, id string, userID int64, address string) (*model.Order, error)
	// SetPaymentReference stores the provider reference while the order is still pending.
	SetPaymentReference(ctx context.Context, id string, reference string) (*model.Order, error)
	// TransitionStatus moves the order from one status to another only if its current
	// status equals from. The returned flag reports whether this call applied the change.
	TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (*model.Order, bool, error)
	// ClaimAwaitingPayment returns up to limit pending orders with a payment reference
	// that were last modified and last claimed before staleBefore, least recently
	// checked first, and stamps them as checked at claimedAt.
	ClaimAwaitingPayment(ctx context.Context, claimedAt, staleBefore time.Time, limit int) ([]model.Order, error)
}
