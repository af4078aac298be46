package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentProvider is the external payment service. Only the payment use case calls it.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, req model.PaymentIntentRequest) (*model.PaymentIntent, error)
	// IntentOutcome reports the terminal outcome of an intent, or "" while it is still open.
	IntentOutcome(ctx context.Context, reference string) (model.PaymentEventKind, error)
}

// NotificationVerifier authenticates and parses provider callbacks.
type NotificationVerifier interface {
	VerifyAndParse(payload []byte, signature string) (*model.PaymentNotification, error)
}

// NotificationDeduper remembers processed provider event ids.
type NotificationDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// EventPublisher announces committed order lifecycle changes.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}
