package model

// PaymentEventKind classifies payment provider outcomes.
type PaymentEventKind string

const (
	PaymentEventSucceeded PaymentEventKind = "payment_intent.succeeded"
	PaymentEventFailed    PaymentEventKind = "payment_intent.payment_failed"
)

// TargetStatus returns the order status a pending order moves to on this event.
func (k PaymentEventKind) TargetStatus() (OrderStatus, bool) {
	switch k {
	case PaymentEventSucceeded:
		return OrderStatusProcessing, true
	case PaymentEventFailed:
		return OrderStatusCancelled, true
	}
	return "", false
}

// PaymentIntentRequest is sent to the payment provider to reserve funds for an order.
type PaymentIntentRequest struct {
	AmountMinor int64
	Currency    string
	OrderID     string
	// IdempotencyKey is shared by retries of the same attempt.
	IdempotencyKey string
}

// PaymentIntent is the provider's answer to an intent request.
type PaymentIntent struct {
	Reference    string
	ClientHandle string
}

// PaymentHandle is returned to the client to complete the payment.
type PaymentHandle struct {
	ClientHandle string
	OrderID      string
}

// PaymentNotification is a verified, parsed provider callback.
type PaymentNotification struct {
	EventID   string
	Kind      PaymentEventKind
	Reference string
	OrderID   string
}
