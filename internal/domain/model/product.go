package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry with its current price and available stock.
type Product struct {
	ID            string
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductPatch lists catalog fields that may be changed after creation.
type ProductPatch struct {
	Name          *string
	Description   *string
	Category      *string
	Price         *decimal.Decimal
	StockQuantity *int
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ProductPage is a single page of catalog listing.
type ProductPage struct {
	Products []Product
	Total    int
	Page     int
	Limit    int
}
