package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether status is one of the known lifecycle values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// AllowsShippingEdit reports whether the owner may still change the shipping address.
func (s OrderStatus) AllowsShippingEdit() bool {
	return s != OrderStatusCancelled && s != OrderStatusDelivered
}

// OrderItem is a product reference captured at order creation with its unit price snapshot.
type OrderItem struct {
	ProductID string
	UnitPrice decimal.Decimal
}

// Order describes a purchase attempt placed by a user.
type Order struct {
	ID               string
	UserID           int64
	Items            []OrderItem
	TotalPrice       decimal.Decimal
	Status           OrderStatus
	ShippingAddress  string
	PaymentReference *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductIDs returns the ordered product references of the order.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// OrderPage is a single page of a user's order history.
type OrderPage struct {
	Orders []Order
	Total  int
	Page   int
	Limit  int
}

// OrderPatch lists owner-editable order fields.
type OrderPatch struct {
	ShippingAddress *string
	Cancel          bool
}
