package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ReconcileOutcome reports what a notification did to local state.
type ReconcileOutcome string

const (
	OutcomeApplied   ReconcileOutcome = "applied"
	OutcomeNoop      ReconcileOutcome = "noop"
	OutcomeUnmatched ReconcileOutcome = "unmatched"
	OutcomeIgnored   ReconcileOutcome = "ignored"
	OutcomeDuplicate ReconcileOutcome = "duplicate"
)

// ReconcileOptions toggles optional reconciler side effects.
type ReconcileOptions struct {
	ReleaseStockOnFailure bool
}

// ReconcileUseCase applies provider payment outcomes to pending orders.
// Only the pending state reacts; every other state absorbs replays.
type ReconcileUseCase struct {
	orders    repository.OrderRepository
	inventory repository.InventoryLedger
	verifier  NotificationVerifier
	dedup     NotificationDeduper
	events    EventPublisher
	opts      ReconcileOptions
	logger    *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(
	orders repository.OrderRepository,
	inventory repository.InventoryLedger,
	verifier NotificationVerifier,
	dedup NotificationDeduper,
	events EventPublisher,
	opts ReconcileOptions,
	logger *slog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		orders:    orders,
		inventory: inventory,
		verifier:  verifier,
		dedup:     dedup,
		events:    events,
		opts:      opts,
		logger:    logger,
	}
}

// HandleNotification verifies a raw provider callback and applies it.
// Only ErrInvalidSignature means the payload was rejected.
func (u *ReconcileUseCase) HandleNotification(ctx context.Context, payload []byte, signature string) (ReconcileOutcome, error) {
	n, err := u.verifier.VerifyAndParse(payload, signature)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidSignature) {
			return "", err
		}
		u.logger.Warn("payment notification not understood", slog.String("error", err.Error()))
		return OutcomeIgnored, nil
	}

	if n.EventID != "" && u.dedup != nil {
		seen, err := u.dedup.Seen(ctx, n.EventID)
		if err != nil {
			u.logger.Warn("notification dedup lookup failed", slog.String("event_id", n.EventID), slog.String("error", err.Error()))
		} else if seen {
			u.logger.Info("duplicate payment notification", slog.String("event_id", n.EventID))
			return OutcomeDuplicate, nil
		}
	}

	outcome, err := u.Apply(ctx, *n)
	if err != nil {
		return "", err
	}

	if n.EventID != "" && u.dedup != nil {
		if err := u.dedup.Mark(ctx, n.EventID); err != nil {
			u.logger.Warn("notification dedup mark failed", slog.String("event_id", n.EventID), slog.String("error", err.Error()))
		}
	}
	return outcome, nil
}

// Apply drives the pending order named by the notification to the status
// matching its kind. Orders are correlated by id, not by payment reference.
func (u *ReconcileUseCase) Apply(ctx context.Context, n model.PaymentNotification) (ReconcileOutcome, error) {
	target, ok := n.Kind.TargetStatus()
	if !ok {
		u.logger.Info("ignoring payment notification kind", slog.String("kind", string(n.Kind)))
		return OutcomeIgnored, nil
	}
	if n.OrderID == "" {
		u.logger.Info("payment notification without order id", slog.String("reference", n.Reference))
		return OutcomeUnmatched, nil
	}

	order, err := u.orders.GetByID(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Info("payment notification for unknown order", slog.String("order_id", n.OrderID))
			return OutcomeUnmatched, nil
		}
		return "", fmt.Errorf("load order %s: %w", n.OrderID, err)
	}
	if order.Status != model.OrderStatusPending {
		return OutcomeNoop, nil
	}
	if n.Reference != "" && (order.PaymentReference == nil || *order.PaymentReference != n.Reference) {
		current := ""
		if order.PaymentReference != nil {
			current = *order.PaymentReference
		}
		u.logger.Warn("payment notification for replaced reference",
			slog.String("order_id", order.ID),
			slog.String("reference", n.Reference),
			slog.String("current_reference", current),
		)
	}

	updated, applied, err := u.orders.TransitionStatus(ctx, order.ID, model.OrderStatusPending, target)
	if err != nil {
		return "", fmt.Errorf("transition order %s: %w", order.ID, err)
	}
	if !applied {
		return OutcomeNoop, nil
	}

	eventType := model.OrderEventPaymentSucceeded
	if target == model.OrderStatusCancelled {
		eventType = model.OrderEventPaymentFailed
		if u.opts.ReleaseStockOnFailure {
			releaseStock(ctx, u.inventory, u.logger, order.ProductIDs())
		}
	}
	u.logger.Info("payment outcome applied",
		slog.String("order_id", order.ID),
		slog.String("status", string(target)),
	)
	publishEvent(ctx, u.events, u.logger, eventType, updated)
	return OutcomeApplied, nil
}
