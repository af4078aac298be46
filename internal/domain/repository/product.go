package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository is the catalog store consulted by checkout.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	// Delete removes the product. Orders keep their item snapshots.
	Delete(ctx context.Context, id string) error
}

// InventoryLedger mutates per-product stock atomically.
//
// Reserve must fail with ErrOutOfStock instead of letting stock drop below zero,
// and must be linearizable with respect to concurrent reservations of the same product.
type InventoryLedger interface {
	Reserve(ctx context.Context, productID string, quantity int) (int, error)
	Release(ctx context.Context, productID string, quantity int) (int, error)
}
