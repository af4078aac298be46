package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// PaymentOptions tunes provider interaction.
type PaymentOptions struct {
	Currency string
	Timeout  time.Duration
	// PollGrace is how long a pending order with a reference waits for its
	// webhook before the provider is asked directly.
	PollGrace time.Duration
}

// PaymentUseCase is the bridge between orders and the payment provider.
type PaymentUseCase struct {
	orders   repository.OrderRepository
	provider PaymentProvider
	opts     PaymentOptions
	logger   *slog.Logger
	now      func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, provider PaymentProvider, opts PaymentOptions, logger *slog.Logger) *PaymentUseCase {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &PaymentUseCase{
		orders:   orders,
		provider: provider,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateIntent reserves payment for a pending order owned by userID and
// stores the provider reference, replacing any earlier one.
func (u *PaymentUseCase) CreateIntent(ctx context.Context, userID int64, orderID string) (*model.PaymentHandle, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", domainErrors.ErrValidation)
	}
	order, err := u.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidState, order.Status)
	}

	callCtx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()
	intent, err := u.provider.CreateIntent(callCtx, model.PaymentIntentRequest{
		AmountMinor:    ToMinorUnits(order.TotalPrice),
		Currency:       u.opts.Currency,
		OrderID:        order.ID,
		IdempotencyKey: intentKey(order),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrPaymentProvider, err)
	}
	if intent == nil || intent.Reference == "" {
		return nil, fmt.Errorf("%w: empty intent reference", domainErrors.ErrPaymentProvider)
	}

	if _, err := u.orders.SetPaymentReference(ctx, order.ID, intent.Reference); err != nil {
		return nil, err
	}
	u.logger.Info("payment intent created",
		slog.String("order_id", order.ID),
		slog.String("reference", intent.Reference),
	)

	return &model.PaymentHandle{ClientHandle: intent.ClientHandle, OrderID: order.ID}, nil
}

// AwaitingPayment claims pending orders whose webhook is overdue. A claimed
// order is offered again only after another grace period.
func (u *PaymentUseCase) AwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	now := u.now()
	return u.orders.ClaimAwaitingPayment(ctx, now, now.Add(-u.opts.PollGrace), limit)
}

// Outcome asks the provider how the order's current intent ended. An empty
// kind means the intent is still open.
func (u *PaymentUseCase) Outcome(ctx context.Context, order model.Order) (*model.PaymentNotification, error) {
	if order.PaymentReference == nil || *order.PaymentReference == "" {
		return nil, fmt.Errorf("%w: order has no payment reference", domainErrors.ErrInvalidState)
	}
	callCtx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()
	kind, err := u.provider.IntentOutcome(callCtx, *order.PaymentReference)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrPaymentProvider, err)
	}
	return &model.PaymentNotification{
		Kind:      kind,
		Reference: *order.PaymentReference,
		OrderID:   order.ID,
	}, nil
}

// intentKey is stable while the order's reference and total are unchanged, so
// a retried request maps to the intent the provider already created.
func intentKey(order *model.Order) string {
	previous := ""
	if order.PaymentReference != nil {
		previous = *order.PaymentReference
	}
	name := order.ID + "/" + previous + "/" + strconv.FormatInt(ToMinorUnits(order.TotalPrice), 10)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// ToMinorUnits converts an amount to integer minor units rounding to the nearest unit.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
