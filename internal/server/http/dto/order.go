package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest describes order placement payload.
type CreateOrderRequest struct {
	ProductIDs      []string `json:"product_ids"`
	ShippingAddress string   `json:"shipping_address"`
}

// UpdateOrderRequest describes owner edits. Status only accepts "cancelled".
type UpdateOrderRequest struct {
	ShippingAddress *string `json:"shipping_address"`
	Status          *string `json:"status"`
}

// OrderItemResponse is a product line with its price snapshot.
type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderResponse describes order state returned to its owner.
type OrderResponse struct {
	ID               string              `json:"id"`
	Items            []OrderItemResponse `json:"items"`
	TotalPrice       decimal.Decimal     `json:"total_price"`
	Status           string              `json:"status"`
	ShippingAddress  string              `json:"shipping_address"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// OrderListResponse is one page of order history.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}
