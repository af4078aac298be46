package model

import "time"

// OrderEventType names order lifecycle events published to other services.
type OrderEventType string

const (
	OrderEventCreated          OrderEventType = "order.created"
	OrderEventCancelled        OrderEventType = "order.cancelled"
	OrderEventPaymentSucceeded OrderEventType = "order.payment_succeeded"
	OrderEventPaymentFailed    OrderEventType = "order.payment_failed"
)

// OrderEvent describes a committed order lifecycle change.
type OrderEvent struct {
	Type       OrderEventType
	OrderID    string
	UserID     int64
	Status     OrderStatus
	Total      string
	Reference  string
	OccurredAt time.Time
}

// NewOrderEvent snapshots order state for publishing.
func NewOrderEvent(eventType OrderEventType, order *Order) OrderEvent {
	ev := OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.TotalPrice.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
	if order.PaymentReference != nil {
		ev.Reference = *order.PaymentReference
	}
	return ev
}
