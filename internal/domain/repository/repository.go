package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Factory hands out the repositories backed by one storage.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Inventory() InventoryLedger
	Orders() OrderRepository
}

// UserRepository stores customer accounts. Create fails with ErrAlreadyExists
// for a taken login; lookups fail with ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}
